package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

func TestCategoryAPI(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	cat := app.createCategory(t, "Programming")
	empty := app.createCategory(t, "Design")
	crs := app.createCourse(t, "Go Basics", 100, cat.ID, teacher)

	tests := []httpTest{
		{
			name:     "Categories list, public",
			method:   http.MethodGet,
			path:     "/v1/categories",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []course.Category{cat, empty}),
		},
		{
			name:     "Category detail with courses",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/categories/%d", cat.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, CategoryDetailResponse{Category: cat, Courses: []course.Course{crs}}),
		},
		{
			name:     "Category detail, no courses",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/categories/%d", empty.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, CategoryDetailResponse{Category: empty, Courses: []course.Course{}}),
		},
		{
			name:     "Category detail, unknown",
			method:   http.MethodGet,
			path:     "/v1/categories/999",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "Category create, unauthenticated",
			method:   http.MethodPost,
			path:     "/v1/categories",
			body:     []byte(`{"name": "Business"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Category create, missing name",
			method:   http.MethodPost,
			path:     "/v1/categories",
			body:     []byte(`{}`),
			token:    app.getToken(t, teacher),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Category create ok",
			method:   http.MethodPost,
			path:     "/v1/categories",
			body:     []byte(`{"name": "Business"}`),
			token:    app.getToken(t, teacher),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, course.Category{ID: 3, Name: "Business"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
