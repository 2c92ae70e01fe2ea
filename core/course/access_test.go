package course_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
	dummydb "github.com/masolab/soko/storage/database/dummy"
)

func newTestService(t *testing.T) (*course.Service, course.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewCourseRepository(db)
	return course.NewService(repo), repo
}

func createCourse(t *testing.T, repo course.Repository, owner user.User) course.Course {
	crs, err := repo.CreateCourse(course.Course{
		Name:        "Go Basics",
		Description: "an introduction",
		Level:       course.LevelBeginner,
		Price:       100,
		CreatedBy:   owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func TestCanWrite(t *testing.T) {
	owner := user.User{ID: 1}
	other := user.User{ID: 2}
	anonymous := user.User{}
	crs := course.Course{ID: 10, CreatedBy: owner.ID}

	assert.True(t, course.CanWrite(owner, crs))
	assert.False(t, course.CanWrite(other, crs))
	assert.False(t, course.CanWrite(anonymous, crs))

	// an unsaved course belongs to nobody, not to anonymous callers
	assert.False(t, course.CanWrite(anonymous, course.Course{}))
}

func TestCanWriteSub(t *testing.T) {
	svc, repo := newTestService(t)
	owner := user.User{ID: 1}
	other := user.User{ID: 2}
	crs := createCourse(t, repo, owner)

	assert.True(t, svc.CanWriteSub(owner, crs.ID))
	assert.False(t, svc.CanWriteSub(other, crs.ID))
	assert.False(t, svc.CanWriteSub(user.User{}, crs.ID))

	// a dangling parent reference denies access; fail closed
	assert.False(t, svc.CanWriteSub(owner, 999))
}

func TestCanReview(t *testing.T) {
	svc, repo := newTestService(t)
	owner := user.User{ID: 1}
	reviewer := user.User{ID: 2}
	crs := createCourse(t, repo, owner)

	assert.Equal(t, course.ErrPermissionDenied, svc.CanReview(user.User{}, crs.ID))
	assert.NoError(t, svc.CanReview(reviewer, crs.ID))

	_, err := svc.CreateReview(reviewer, crs.ID, course.NewReview{Rating: 5})
	assert.NoError(t, err)
	assert.Equal(t, course.ErrAlreadyReviewed, svc.CanReview(reviewer, crs.ID))

	// other users are unaffected
	assert.NoError(t, svc.CanReview(user.User{ID: 3}, crs.ID))
}
