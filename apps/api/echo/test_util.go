package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/cart"
	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
	emailsvc "github.com/masolab/soko/services/email"
	dummydb "github.com/masolab/soko/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	conf     *core.Config
	usrRepo  user.Repository
	crsRepo  course.Repository
	cartRepo cart.Repository
	usrSvc   *user.Service
	crsSvc   *course.Service
	cartSvc  *cart.Service
	tokens   user.TokenRepository
	server   Server
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	app := &testApp{
		conf:     conf,
		usrRepo:  dummydb.NewUserRepository(db),
		crsRepo:  dummydb.NewCourseRepository(db),
		cartRepo: dummydb.NewCartRepository(db),
		tokens:   dummydb.NewTokenRepository(),
	}
	app.usrSvc = user.NewService(app.usrRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	app.crsSvc = course.NewService(app.crsRepo)
	app.cartSvc = cart.NewService(app.cartRepo, app.crsSvc)

	app.server = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		UserSvc:        app.usrSvc,
		CourseSvc:      app.crsSvc,
		CartSvc:        app.cartSvc,
		TokenRepo:      app.tokens,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return app
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := app.usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (app *testApp) createCategory(t *testing.T, name string) course.Category {
	cat, err := app.crsRepo.CreateCategory(course.Category{Name: name})
	if err != nil {
		t.Fatalf("createCategory() failed: %v", err)
	}
	return cat
}

func (app *testApp) createCourse(t *testing.T, name string, price int, catID int, owner user.User) course.Course {
	now := time.Now().UTC().Truncate(time.Second)
	crs, err := app.crsRepo.CreateCourse(course.Course{
		Name:        name,
		Description: name + " description",
		Level:       course.LevelBeginner,
		Price:       price,
		CategoryID:  catID,
		CreatedBy:   owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (app *testApp) getRefreshToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetRefreshClaims(usr, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getRefreshToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
