package cart

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/masolab/soko/core/course"
)

// Cart holds a user's pending course purchases. One per user, created lazily.
type Cart struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Item struct {
	ID       int       `json:"id"`
	CartID   int       `json:"cart_id"`
	CourseID int       `json:"course_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"` // UTC
}

// Line is an Item joined with its Course; the total is derived on read
// and never stored.
type Line struct {
	Item
	Course course.Course `json:"course"`
}

// TotalPrice returns quantity x course price, in cents.
func (l Line) TotalPrice() int {
	return l.Quantity * l.Course.Price
}

type NewItem struct {
	CourseID int `json:"course_id" validate:"required"`
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	return validate.Struct(ni)
}
