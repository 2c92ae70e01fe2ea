package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core/cart"
	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
	dummydb "github.com/masolab/soko/storage/database/dummy"
)

func newTestService(t *testing.T) (*cart.Service, course.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	crsRepo := dummydb.NewCourseRepository(db)
	return cart.NewService(dummydb.NewCartRepository(db), course.NewService(crsRepo)), crsRepo
}

func createCourse(t *testing.T, repo course.Repository, price int) course.Course {
	crs, err := repo.CreateCourse(course.Course{
		Name:  "Go Basics",
		Level: course.LevelBeginner,
		Price: price,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t)
	usr := user.User{ID: 1}

	// created lazily on first read
	crt, lines, err := svc.Get(usr)
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, crt.UserID)
	assert.Empty(t, lines)

	// subsequent reads return the same cart
	again, _, err := svc.Get(usr)
	assert.NoError(t, err)
	assert.Equal(t, crt.ID, again.ID)

	// each user gets their own
	other, _, err := svc.Get(user.User{ID: 2})
	assert.NoError(t, err)
	assert.NotEqual(t, crt.ID, other.ID)
}

func TestAddItem(t *testing.T) {
	svc, crsRepo := newTestService(t)
	usr := user.User{ID: 1}
	crs := createCourse(t, crsRepo, 150)

	_, err := svc.AddItem(usr, cart.NewItem{CourseID: 999, Quantity: 1})
	assert.Equal(t, course.ErrNotFound, err)

	line, err := svc.AddItem(usr, cart.NewItem{CourseID: crs.ID, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, crs.ID, line.CourseID)
	assert.Equal(t, 300, line.TotalPrice()) // 2 x 150

	_, lines, err := svc.Get(usr)
	assert.NoError(t, err)
	if assert.Len(t, lines, 1) {
		assert.Equal(t, line.Item, lines[0].Item)
	}
}

func TestGetItemScope(t *testing.T) {
	svc, crsRepo := newTestService(t)
	usr := user.User{ID: 1}
	stranger := user.User{ID: 2}
	crs := createCourse(t, crsRepo, 100)

	line, err := svc.AddItem(usr, cart.NewItem{CourseID: crs.ID, Quantity: 1})
	assert.NoError(t, err)

	got, err := svc.GetItem(usr, line.Item.ID)
	assert.NoError(t, err)
	assert.Equal(t, line, got)

	// other users' items read as not found, never forbidden
	_, err = svc.GetItem(stranger, line.Item.ID)
	assert.Equal(t, cart.ErrNotFound, err)
	assert.Equal(t, cart.ErrNotFound, svc.RemoveItem(stranger, line.Item.ID))

	// the refused removal left the item in place
	assert.NoError(t, svc.RemoveItem(usr, line.Item.ID))
	_, err = svc.GetItem(usr, line.Item.ID)
	assert.Equal(t, cart.ErrNotFound, err)
}

func TestGetSkipsStaleLines(t *testing.T) {
	svc, crsRepo := newTestService(t)
	usr := user.User{ID: 1}
	crs := createCourse(t, crsRepo, 100)
	gone := createCourse(t, crsRepo, 200)

	_, err := svc.AddItem(usr, cart.NewItem{CourseID: crs.ID, Quantity: 1})
	assert.NoError(t, err)
	_, err = svc.AddItem(usr, cart.NewItem{CourseID: gone.ID, Quantity: 1})
	assert.NoError(t, err)

	// the course is removed from the catalog after it was added to the cart
	assert.NoError(t, crsRepo.DeleteCourse(gone.ID))

	_, lines, err := svc.Get(usr)
	assert.NoError(t, err)
	if assert.Len(t, lines, 1) {
		assert.Equal(t, crs.ID, lines[0].CourseID)
	}
}
