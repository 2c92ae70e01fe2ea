package course

import (
	"errors"

	"github.com/masolab/soko/core/user"
)

var ErrPermissionDenied = errors.New("permission denied")

// CanWrite reports whether `usr` may mutate `crs`: only the authenticated
// owner referenced by Course.CreatedBy may.
func CanWrite(usr user.User, crs Course) bool {
	return !usr.IsAnonymous() && usr.ID == crs.CreatedBy
}

// CanWriteSub reports whether `usr` may mutate a sub-resource of the course
// identified by `courseID`. Ownership is inherited from the parent Course and
// re-resolved on every call. When the parent cannot be resolved (dangling
// reference, storage failure) access is denied: fail closed.
func (svc *Service) CanWriteSub(usr user.User, courseID int) bool {
	if usr.IsAnonymous() {
		return false
	}
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return false
	}
	return CanWrite(usr, crs)
}

// CanReview reports whether `usr` may review the given course: any
// authenticated user, at most once per course. A second attempt is a
// permission problem (ErrAlreadyReviewed), distinct from an unknown course.
func (svc *Service) CanReview(usr user.User, courseID int) error {
	if usr.IsAnonymous() {
		return ErrPermissionDenied
	}
	if _, err := svc.repo.GetCourseReviewByUser(courseID, usr.ID); err == nil {
		return ErrAlreadyReviewed
	} else if err != ErrNotFound {
		return err
	}
	return nil
}
