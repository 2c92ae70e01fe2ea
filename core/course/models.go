package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/masolab/soko/core"
)

// Course levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Course is the root of the marketplace catalog; every sub-resource
// (Lesson, Assignment, Question, Exam, Certificate, Review) hangs off one.
type Course struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	Price       int       `json:"price"` // cents
	CategoryID  int       `json:"category_id"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Lesson struct {
	ID       int         `json:"id"`
	CourseID int         `json:"course_id"`
	Title    string      `json:"title"`
	VideoURL null.String `json:"video_url"`
	Content  string      `json:"content"`
	Position int         `json:"position"`
}

type Assignment struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     null.Time `json:"due_date"`
}

type Question struct {
	ID         int       `json:"id"`
	CourseID   int       `json:"course_id"`
	Text       string    `json:"text"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type Exam struct {
	ID           int    `json:"id"`
	CourseID     int    `json:"course_id"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score"`
	Duration     int    `json:"duration"` // minutes
}

type Certificate struct {
	ID             int    `json:"id"`
	CourseID       int    `json:"course_id"`
	IssuedID       string `json:"issued_id"`
	CertificateURL string `json:"certificate_url"`
}

type Review struct {
	ID        int         `json:"id"`
	CourseID  int         `json:"course_id"`
	UserID    int         `json:"user_id"`
	Rating    int         `json:"rating"`
	Comment   null.String `json:"comment"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// Detail is a Course with its nested collections loaded.
type Detail struct {
	Course
	Category     Category      `json:"category"`
	Lessons      []Lesson      `json:"lessons"`
	Assignments  []Assignment  `json:"assignments"`
	Questions    []Question    `json:"questions"`
	Exams        []Exam        `json:"exams"`
	Certificates []Certificate `json:"certificates"`
	Reviews      []Review      `json:"reviews"`
}

// Payloads

type NewCategory struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewCourse is used both to create and to fully update a Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Level       string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Price       int    `json:"price" validate:"gte=0"`
	CategoryID  int    `json:"category_id" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Level = core.CleanString(nc.Level, true /* lower */)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	// the referenced category must exist
	if _, err := svc.GetCategory(nc.CategoryID); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "category_id", Error: "unknown category"})
	}
	return nil
}

// UpdateCourse applies a partial update to a Course; only provided fields change.
type UpdateCourse struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Level       *string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *int    `json:"price" validate:"omitempty,gte=0"`
	CategoryID  *int    `json:"category_id"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, svc *Service) error {
	if uc.Name != nil {
		*uc.Name = core.CleanString(*uc.Name)
	}
	if uc.Description != nil {
		*uc.Description = core.CleanString(*uc.Description)
	}
	if uc.Level != nil {
		*uc.Level = core.CleanString(*uc.Level, true /* lower */)
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.CategoryID != nil {
		if _, err := svc.GetCategory(*uc.CategoryID); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "category_id", Error: "unknown category"})
		}
	}
	return nil
}

type NewLesson struct {
	Title    string      `json:"title" validate:"required"`
	VideoURL null.String `json:"video_url"`
	Content  string      `json:"content" validate:"required"`
	Position int         `json:"position" validate:"gte=0"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	DueDate     null.Time `json:"due_date"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

type NewQuestion struct {
	Text       string `json:"text" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	nq.Difficulty = core.CleanString(nq.Difficulty, true /* lower */)
	return validate.Struct(nq)
}

type NewExam struct {
	Title        string `json:"title" validate:"required"`
	PassingScore int    `json:"passing_score" validate:"gte=0,lte=100"`
	Duration     int    `json:"duration" validate:"gt=0"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	return validate.Struct(ne)
}

type NewCertificate struct {
	IssuedID       string `json:"issued_id" validate:"required"`
	CertificateURL string `json:"certificate_url" validate:"required,url"`
}

func (nc *NewCertificate) Validate(validate *validator.Validate) error {
	nc.IssuedID = core.CleanString(nc.IssuedID)
	nc.CertificateURL = core.CleanString(nc.CertificateURL)
	return validate.Struct(nc)
}

type NewReview struct {
	Rating  int         `json:"rating" validate:"required,min=1,max=5"`
	Comment null.String `json:"comment"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	return validate.Struct(nr)
}

// QueryFilter narrows a course listing; all fields are ANDed.
// Search does a case-insensitive match on Course.Name or Course.Description.
// PriceGT and PriceLT are exclusive bounds.
type QueryFilter struct {
	Search     string `query:"search"`
	CategoryID *int   `query:"category"`
	Level      string `query:"level"`
	PriceGT    *int   `query:"price__gt"`
	PriceLT    *int   `query:"price__lt"`
	CreatedBy  *int   `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Level = core.CleanString(qf.Level, true /* lower */)
}
