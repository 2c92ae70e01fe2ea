package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core/cart"
	"github.com/masolab/soko/core/user"
)

func TestCartRetrieve(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	token := app.getToken(t, student)

	req, rec := newRequest(http.MethodGet, "/v1/cart")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the cart is created lazily on first read
	req, rec = newAuthRequest(http.MethodGet, "/v1/cart", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var res CartResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, student.ID, res.UserID)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestCartItems(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "Jane Doe", "janedoe", "janedoe@test.soko", "S3cretPwd!", user.TeacherRoles, true)
	student := app.createUser(t, "John Doe", "johndoe", "johndoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	stranger := app.createUser(t, "Jim Doe", "jimdoe", "jimdoe@test.soko", "S3cretPwd!", user.StudentRoles, true)
	cat := app.createCategory(t, "Programming")
	goCrs := app.createCourse(t, "Go Basics", 50, cat.ID, teacher)
	pyCrs := app.createCourse(t, "Python Basics", 150, cat.ID, teacher)
	token := app.getToken(t, student)
	strangerToken := app.getToken(t, stranger)

	addItem := func(courseID, quantity, wantCode int) CartLineResponse {
		body := marchallObj(t, cart.NewItem{CourseID: courseID, Quantity: quantity})
		req, rec := newAuthRequest(http.MethodPost, "/v1/cart/items", token, body)
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, wantCode, rec.Code)

		var line CartLineResponse
		if rec.Code == http.StatusCreated {
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
		}
		return line
	}

	// unknown course reads as a field validation problem
	addItem(999, 1, http.StatusBadRequest)
	// quantity must be positive
	addItem(goCrs.ID, 0, http.StatusBadRequest)

	goLine := addItem(goCrs.ID, 2, http.StatusCreated)
	assert.Equal(t, 100, goLine.TotalPrice) // 2 x 50
	pyLine := addItem(pyCrs.ID, 1, http.StatusCreated)
	assert.Equal(t, 150, pyLine.TotalPrice)

	// the cart totals derive from the lines
	req, rec := newAuthRequest(http.MethodGet, "/v1/cart", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var res CartResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 250, res.Total)

	notFound := marchallObj(t, httpErr{Error: "not found"})
	tests := []httpTest{
		{
			name:     "Cart item retrieve ok",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/cart/items/%d", goLine.Item.ID),
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, goLine),
		},
		{
			// another user's item is not found, never forbidden
			name:     "Cart item retrieve, foreign item",
			method:   http.MethodGet,
			path:     fmt.Sprintf("/v1/cart/items/%d", goLine.Item.ID),
			token:    strangerToken,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
		{
			name:     "Cart item remove, foreign item",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/cart/items/%d", goLine.Item.ID),
			token:    strangerToken,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
		{
			name:     "Cart item remove ok",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/cart/items/%d", goLine.Item.ID),
			token:    token,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "Cart item remove, already gone",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/cart/items/%d", goLine.Item.ID),
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: notFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// only the python line remains
	req, rec = newAuthRequest(http.MethodGet, "/v1/cart", token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	res = CartResponse{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 150, res.Total)
}
