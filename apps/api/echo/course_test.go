package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

func TestCourseList(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	other := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	cat := app.createCategory(t, "Programming")

	goCrs := app.createCourse(t, "Go Basics", 50, cat.ID, teacher)
	pyCrs := app.createCourse(t, "Python Basics", 150, cat.ID, other)
	rsCrs := app.createCourse(t, "Rust Deep Dive", 250, cat.ID, teacher)

	item := func(crs course.Course) CourseListItem {
		return CourseListItem{Course: crs, CategoryName: cat.Name}
	}
	envelope := func(count, page, pageSize int, items ...CourseListItem) []byte {
		if items == nil {
			items = []CourseListItem{}
		}
		return marchallObj(t, PaginatedResponse{Count: count, Page: page, PageSize: pageSize, Results: items})
	}

	tests := []httpTest{
		{
			name:     "Courses, all",
			method:   http.MethodGet,
			path:     "/v1/courses",
			wantCode: http.StatusOK,
			wantData: envelope(3, 1, 20, item(goCrs), item(pyCrs), item(rsCrs)),
		},
		{
			// both price bounds are exclusive
			name:     "Courses, price window",
			method:   http.MethodGet,
			path:     "/v1/courses?price__gt=50&price__lt=250",
			wantCode: http.StatusOK,
			wantData: envelope(1, 1, 20, item(pyCrs)),
		},
		{
			name:     "Courses, price window empty",
			method:   http.MethodGet,
			path:     "/v1/courses?price__gt=150&price__lt=250",
			wantCode: http.StatusOK,
			wantData: envelope(0, 1, 20),
		},
		{
			name:     "Courses, search",
			method:   http.MethodGet,
			path:     "/v1/courses?search=basics",
			wantCode: http.StatusOK,
			wantData: envelope(2, 1, 20, item(goCrs), item(pyCrs)),
		},
		{
			name:     "Courses, ordering by price desc",
			method:   http.MethodGet,
			path:     "/v1/courses?ordering=-price",
			wantCode: http.StatusOK,
			wantData: envelope(3, 1, 20, item(rsCrs), item(pyCrs), item(goCrs)),
		},
		{
			// unknown ordering fields are dropped, not an error
			name:     "Courses, unknown ordering field",
			method:   http.MethodGet,
			path:     "/v1/courses?ordering=created_by",
			wantCode: http.StatusOK,
			wantData: envelope(3, 1, 20, item(goCrs), item(pyCrs), item(rsCrs)),
		},
		{
			// the count is the total match count, not the page size
			name:     "Courses, second page",
			method:   http.MethodGet,
			path:     "/v1/courses?page=2&page_size=2",
			wantCode: http.StatusOK,
			wantData: envelope(3, 2, 2, item(rsCrs)),
		},
		{
			name:     "Courses mine, unauthenticated",
			method:   http.MethodGet,
			path:     "/v1/courses/mine",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Courses mine",
			method:   http.MethodGet,
			path:     "/v1/courses/mine",
			token:    app.getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: envelope(2, 1, 20, item(goCrs), item(rsCrs)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestCourseCreateUpdateDelete(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	other := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	cat := app.createCategory(t, "Programming")
	ownerToken := app.getToken(t, teacher)
	otherToken := app.getToken(t, other)

	newCourseBody := func(name string, catID int) []byte {
		return marchallObj(t, course.NewCourse{
			Name:        name,
			Description: name + " description",
			Level:       course.LevelBeginner,
			Price:       100,
			CategoryID:  catID,
		})
	}
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	// create
	req, rec := newRequest(http.MethodPost, "/v1/courses", newCourseBody("Go Basics", cat.ID))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req, rec = newAuthRequest(http.MethodPost, "/v1/courses", ownerToken, newCourseBody("Go Basics", 99))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, map[string]string{"category_id": "unknown category"}))
	assert.NoError(t, err)
	assert.True(t, ok)

	req, rec = newAuthRequest(http.MethodPost, "/v1/courses", ownerToken, newCourseBody("Go Basics", cat.ID))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var crs course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
	assert.Equal(t, teacher.ID, crs.CreatedBy)
	path := fmt.Sprintf("/v1/courses/%d", crs.ID)

	lsn, err := app.crsSvc.CreateLesson(crs.ID, course.NewLesson{Title: "Hello", Content: "package main", Position: 1})
	assert.NoError(t, err)

	tests := []httpTest{
		{
			name:     "Course update, unauthenticated",
			method:   http.MethodPut,
			path:     path,
			body:     newCourseBody("Go Basics v2", cat.ID),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Course update, not the owner",
			method:   http.MethodPut,
			path:     path,
			body:     newCourseBody("Go Basics v2", cat.ID),
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "Course update ok",
			method:   http.MethodPut,
			path:     path,
			body:     newCourseBody("Go Basics v2", cat.ID),
			token:    ownerToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "Course delete, not the owner",
			method:   http.MethodDelete,
			path:     path,
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			// refused mutations leave the course untouched
			name:     "Course still retrievable",
			method:   http.MethodGet,
			path:     path,
			wantCode: http.StatusOK,
		},
		{
			name:     "Course delete ok",
			method:   http.MethodDelete,
			path:     path,
			token:    ownerToken,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "Course gone",
			method:   http.MethodGet,
			path:     path,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the delete cascaded to the course's sub-resources
	_, err = app.crsSvc.GetLesson(lsn.ID)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestCoursePartialUpdate(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	other := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	cat := app.createCategory(t, "Programming")
	crs := app.createCourse(t, "Go Basics", 100, cat.ID, teacher)
	ownerToken := app.getToken(t, teacher)
	otherToken := app.getToken(t, other)
	path := fmt.Sprintf("/v1/courses/%d", crs.ID)

	tests := []httpTest{
		{
			name:     "Course patch, unauthenticated",
			method:   http.MethodPatch,
			path:     path,
			body:     []byte(`{"price": 250}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Course patch, not the owner",
			method:   http.MethodPatch,
			path:     path,
			body:     []byte(`{"price": 250}`),
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "Course patch, invalid level",
			method:   http.MethodPatch,
			path:     path,
			body:     []byte(`{"level": "guru"}`),
			token:    ownerToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Course patch, unknown category",
			method:   http.MethodPatch,
			path:     path,
			body:     []byte(`{"category_id": 99}`),
			token:    ownerToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"category_id": "unknown category"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// none of the refused patches changed anything
	kept, err := app.crsSvc.GetByID(crs.ID)
	assert.NoError(t, err)
	assert.Equal(t, crs, kept)

	// a single-field patch changes that field and nothing else
	req, rec := newAuthRequest(http.MethodPatch, path, ownerToken, []byte(`{"price": 250}`))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var patched course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	assert.Equal(t, 250, patched.Price)
	assert.Equal(t, crs.Name, patched.Name)
	assert.Equal(t, crs.Description, patched.Description)
	assert.Equal(t, crs.Level, patched.Level)
	assert.Equal(t, crs.CategoryID, patched.CategoryID)
	assert.Equal(t, crs.CreatedBy, patched.CreatedBy)
}

func TestCourseDetail(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	student := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	cat := app.createCategory(t, "Programming")
	crs := app.createCourse(t, "Go Basics", 100, cat.ID, teacher)

	lsn, err := app.crsSvc.CreateLesson(crs.ID, course.NewLesson{Title: "Hello", Content: "package main", Position: 1})
	assert.NoError(t, err)
	rev, err := app.crsSvc.CreateReview(student, crs.ID, course.NewReview{Rating: 5})
	assert.NoError(t, err)

	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/v1/courses/%d", crs.ID))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var det CourseDetailResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &det))
	assert.Equal(t, crs.ID, det.ID)
	assert.Equal(t, cat.Name, det.Category.Name)
	assert.Equal(t, teacher.Username, det.CreatorUsername)
	assert.Equal(t, []course.Lesson{lsn}, det.Lessons)
	if assert.Len(t, det.Reviews, 1) {
		assert.Equal(t, rev.ID, det.Reviews[0].ID)
		assert.Equal(t, student.Username, det.Reviews[0].ReviewerUsername)
	}

	req, rec = newRequest(http.MethodGet, "/v1/courses/999")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseSubResources(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	other := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	cat := app.createCategory(t, "Programming")
	crs := app.createCourse(t, "Go Basics", 100, cat.ID, teacher)
	otherCrs := app.createCourse(t, "Python Basics", 100, cat.ID, other)
	ownerToken := app.getToken(t, teacher)
	otherToken := app.getToken(t, other)

	lsn, err := app.crsSvc.CreateLesson(crs.ID, course.NewLesson{Title: "Hello", Content: "package main", Position: 1})
	assert.NoError(t, err)

	lessonBody := marchallObj(t, course.NewLesson{Title: "Pointers", Content: "p := &v", Position: 2})
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})
	notFound := marchallObj(t, httpErr{Error: "not found"})

	tests := []httpTest{
		{
			name:     "Lessons list, public",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/courses/%d/lessons", crs.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []course.Lesson{lsn}),
		},
		{
			name:     "Lesson create, unauthenticated",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/lessons", crs.ID),
			body:     lessonBody,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Lesson create, not the owner",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/lessons", crs.ID),
			body:     lessonBody,
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "Lesson create ok",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/lessons", crs.ID),
			body:     lessonBody,
			token:    ownerToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "Lesson create, missing fields",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/lessons", crs.ID),
			body:     []byte(`{}`),
			token:    ownerToken,
			wantCode: http.StatusBadRequest,
		},
		{
			// a lesson is only addressable under its own course
			name:     "Lesson retrieve, wrong parent course",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/courses/%d/lessons/%d", otherCrs.ID, lsn.ID),
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
		{
			// even its owner cannot mutate it through another course
			name:     "Lesson update, wrong parent course",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/v1/courses/%d/lessons/%d", otherCrs.ID, lsn.ID),
			body:     lessonBody,
			token:    otherToken,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
		{
			name:     "Lesson retrieve ok",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/courses/%d/lessons/%d", crs.ID, lsn.ID),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, lsn),
		},
		{
			name:     "Lesson update ok",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/v1/courses/%d/lessons/%d", crs.ID, lsn.ID),
			body:     lessonBody,
			token:    ownerToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "Lesson delete, not the owner",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/courses/%d/lessons/%d", crs.ID, lsn.ID),
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "Lesson delete ok",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/courses/%d/lessons/%d", crs.ID, lsn.ID),
			token:    ownerToken,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "Exam create, not the owner",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/exams", crs.ID),
			body:     marchallObj(t, course.NewExam{Title: "Final", PassingScore: 70, Duration: 60}),
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "Exam create ok",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/exams", crs.ID),
			body:     marchallObj(t, course.NewExam{Title: "Final", PassingScore: 70, Duration: 60}),
			token:    ownerToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "Question create, invalid difficulty",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/questions", crs.ID),
			body:     []byte(`{"text": "What is a goroutine?", "difficulty": "impossible"}`),
			token:    ownerToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Certificate create ok",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/certificates", crs.ID),
			body:     []byte(`{"issued_id": "CERT-001", "certificate_url": "https://certs.test.soko/CERT-001"}`),
			token:    ownerToken,
			wantCode: http.StatusCreated,
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

func TestCourseReviews(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	student := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	cat := app.createCategory(t, "Programming")
	crs := app.createCourse(t, "Go Basics", 100, cat.ID, teacher)
	token := app.getToken(t, student)

	body := []byte(`{"rating": 4, "comment": "solid intro"}`)
	tests := []httpTest{
		{
			name:     "Review create, unauthenticated",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/reviews", crs.ID),
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "Review create, unknown course",
			method:   http.MethodPost,
			path:     "/v1/courses/999/reviews",
			body:     body,
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "Review create, invalid rating",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/reviews", crs.ID),
			body:     []byte(`{"rating": 6}`),
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Review create ok",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/reviews", crs.ID),
			body:     body,
			token:    token,
			wantCode: http.StatusCreated,
		},
		{
			// one review per (course, user)
			name:     "Review create, already reviewed",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/courses/%d/reviews", crs.ID),
			body:     body,
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: course.ErrAlreadyReviewed.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the rejected duplicate must not replace the original review
	revs, err := app.crsSvc.QueryReviews(crs.ID)
	assert.NoError(t, err)
	if assert.Len(t, revs, 1) {
		assert.Equal(t, 4, revs[0].Rating)
		assert.Equal(t, student.ID, revs[0].UserID)
	}
}
