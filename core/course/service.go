package course

import (
	"errors"
	"time"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("not found")
	ErrAlreadyReviewed = errors.New("course already reviewed by this user")
)

type (
	Repository interface {
		// categories
		CreateCategory(cat Category) (Category, error)
		QueryAllCategories() ([]Category, error)
		GetCategoryByID(id int) (Category, error)

		// courses
		CreateCourse(crs Course) (Course, error)
		GetCourseByID(id int) (Course, error)
		// FilterCourses applies AND operation on available QueryFilter fields and
		// returns the requested page along with the total match count.
		FilterCourses(filter QueryFilter, orderings []core.DBOrdering, page core.Pagination) ([]Course, int, error)
		UpdateCourse(crs Course) (Course, error)
		DeleteCourse(id int) error

		// lessons
		CreateLesson(lsn Lesson) (Lesson, error)
		QueryLessonsByCourse(courseID int) ([]Lesson, error)
		GetLessonByID(id int) (Lesson, error)
		UpdateLesson(lsn Lesson) (Lesson, error)
		DeleteLesson(id int) error

		// assignments
		CreateAssignment(asn Assignment) (Assignment, error)
		QueryAssignmentsByCourse(courseID int) ([]Assignment, error)
		GetAssignmentByID(id int) (Assignment, error)
		UpdateAssignment(asn Assignment) (Assignment, error)
		DeleteAssignment(id int) error

		// questions
		CreateQuestion(qst Question) (Question, error)
		QueryQuestionsByCourse(courseID int) ([]Question, error)
		GetQuestionByID(id int) (Question, error)
		UpdateQuestion(qst Question) (Question, error)
		DeleteQuestion(id int) error

		// exams
		CreateExam(exm Exam) (Exam, error)
		QueryExamsByCourse(courseID int) ([]Exam, error)
		GetExamByID(id int) (Exam, error)
		UpdateExam(exm Exam) (Exam, error)
		DeleteExam(id int) error

		// certificates
		CreateCertificate(cert Certificate) (Certificate, error)
		QueryCertificatesByCourse(courseID int) ([]Certificate, error)
		GetCertificateByID(id int) (Certificate, error)
		UpdateCertificate(cert Certificate) (Certificate, error)
		DeleteCertificate(id int) error

		// reviews
		// CreateReview returns ErrAlreadyReviewed when the (course, user) pair
		// already has a review; the unique constraint is the authority.
		CreateReview(rev Review) (Review, error)
		QueryReviewsByCourse(courseID int) ([]Review, error)
		GetCourseReviewByUser(courseID, userID int) (Review, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Categories

func (svc *Service) CreateCategory(nc NewCategory) (Category, error) {
	return svc.repo.CreateCategory(Category{Name: nc.Name})
}

func (svc *Service) QueryCategories() ([]Category, error) {
	return svc.repo.QueryAllCategories()
}

func (svc *Service) GetCategory(id int) (Category, error) {
	return svc.repo.GetCategoryByID(id)
}

// Courses

func (svc *Service) Create(nc NewCourse, owner user.User) (Course, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCourse(Course{
		Name:        nc.Name,
		Description: nc.Description,
		Level:       nc.Level,
		Price:       nc.Price,
		CategoryID:  nc.CategoryID,
		CreatedBy:   owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetByID(id int) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) Filter(filter QueryFilter, orderings []core.DBOrdering, page core.Pagination) ([]Course, int, error) {
	page.Clean()
	return svc.repo.FilterCourses(filter, orderings, page)
}

func (svc *Service) Update(id int, nc NewCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	crs.Name = nc.Name
	crs.Description = nc.Description
	crs.Level = nc.Level
	crs.Price = nc.Price
	crs.CategoryID = nc.CategoryID
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(crs)
}

// PartialUpdate changes only the fields set in `uc`.
func (svc *Service) PartialUpdate(id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Course{}, err
	}
	if uc.Name != nil {
		crs.Name = *uc.Name
	}
	if uc.Description != nil {
		crs.Description = *uc.Description
	}
	if uc.Level != nil {
		crs.Level = *uc.Level
	}
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.CategoryID != nil {
		crs.CategoryID = *uc.CategoryID
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(crs)
}

func (svc *Service) Delete(id int) error {
	return svc.repo.DeleteCourse(id)
}

// GetDetail loads a Course with all of its nested collections.
func (svc *Service) GetDetail(id int) (Detail, error) {
	crs, err := svc.repo.GetCourseByID(id)
	if err != nil {
		return Detail{}, err
	}
	cat, err := svc.repo.GetCategoryByID(crs.CategoryID)
	if err != nil && err != ErrNotFound {
		return Detail{}, err
	}

	det := Detail{Course: crs, Category: cat}
	if det.Lessons, err = svc.repo.QueryLessonsByCourse(id); err != nil {
		return Detail{}, err
	}
	if det.Assignments, err = svc.repo.QueryAssignmentsByCourse(id); err != nil {
		return Detail{}, err
	}
	if det.Questions, err = svc.repo.QueryQuestionsByCourse(id); err != nil {
		return Detail{}, err
	}
	if det.Exams, err = svc.repo.QueryExamsByCourse(id); err != nil {
		return Detail{}, err
	}
	if det.Certificates, err = svc.repo.QueryCertificatesByCourse(id); err != nil {
		return Detail{}, err
	}
	if det.Reviews, err = svc.repo.QueryReviewsByCourse(id); err != nil {
		return Detail{}, err
	}
	return det, nil
}

// Lessons

func (svc *Service) CreateLesson(courseID int, nl NewLesson) (Lesson, error) {
	return svc.repo.CreateLesson(Lesson{
		CourseID: courseID,
		Title:    nl.Title,
		VideoURL: nl.VideoURL,
		Content:  nl.Content,
		Position: nl.Position,
	})
}

func (svc *Service) QueryLessons(courseID int) ([]Lesson, error) {
	return svc.repo.QueryLessonsByCourse(courseID)
}

func (svc *Service) GetLesson(id int) (Lesson, error) {
	return svc.repo.GetLessonByID(id)
}

func (svc *Service) UpdateLesson(id int, nl NewLesson) (Lesson, error) {
	lsn, err := svc.repo.GetLessonByID(id)
	if err != nil {
		return Lesson{}, err
	}
	lsn.Title = nl.Title
	lsn.VideoURL = nl.VideoURL
	lsn.Content = nl.Content
	lsn.Position = nl.Position
	return svc.repo.UpdateLesson(lsn)
}

func (svc *Service) DeleteLesson(id int) error {
	return svc.repo.DeleteLesson(id)
}

// Assignments

func (svc *Service) CreateAssignment(courseID int, na NewAssignment) (Assignment, error) {
	return svc.repo.CreateAssignment(Assignment{
		CourseID:    courseID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
	})
}

func (svc *Service) QueryAssignments(courseID int) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourse(courseID)
}

func (svc *Service) GetAssignment(id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(id)
}

func (svc *Service) UpdateAssignment(id int, na NewAssignment) (Assignment, error) {
	asn, err := svc.repo.GetAssignmentByID(id)
	if err != nil {
		return Assignment{}, err
	}
	asn.Title = na.Title
	asn.Description = na.Description
	asn.DueDate = na.DueDate
	return svc.repo.UpdateAssignment(asn)
}

func (svc *Service) DeleteAssignment(id int) error {
	return svc.repo.DeleteAssignment(id)
}

// Questions

func (svc *Service) CreateQuestion(courseID int, nq NewQuestion) (Question, error) {
	return svc.repo.CreateQuestion(Question{
		CourseID:   courseID,
		Text:       nq.Text,
		Difficulty: nq.Difficulty,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) QueryQuestions(courseID int) ([]Question, error) {
	return svc.repo.QueryQuestionsByCourse(courseID)
}

func (svc *Service) GetQuestion(id int) (Question, error) {
	return svc.repo.GetQuestionByID(id)
}

func (svc *Service) UpdateQuestion(id int, nq NewQuestion) (Question, error) {
	qst, err := svc.repo.GetQuestionByID(id)
	if err != nil {
		return Question{}, err
	}
	qst.Text = nq.Text
	qst.Difficulty = nq.Difficulty
	return svc.repo.UpdateQuestion(qst)
}

func (svc *Service) DeleteQuestion(id int) error {
	return svc.repo.DeleteQuestion(id)
}

// Exams

func (svc *Service) CreateExam(courseID int, ne NewExam) (Exam, error) {
	return svc.repo.CreateExam(Exam{
		CourseID:     courseID,
		Title:        ne.Title,
		PassingScore: ne.PassingScore,
		Duration:     ne.Duration,
	})
}

func (svc *Service) QueryExams(courseID int) ([]Exam, error) {
	return svc.repo.QueryExamsByCourse(courseID)
}

func (svc *Service) GetExam(id int) (Exam, error) {
	return svc.repo.GetExamByID(id)
}

func (svc *Service) UpdateExam(id int, ne NewExam) (Exam, error) {
	exm, err := svc.repo.GetExamByID(id)
	if err != nil {
		return Exam{}, err
	}
	exm.Title = ne.Title
	exm.PassingScore = ne.PassingScore
	exm.Duration = ne.Duration
	return svc.repo.UpdateExam(exm)
}

func (svc *Service) DeleteExam(id int) error {
	return svc.repo.DeleteExam(id)
}

// Certificates

func (svc *Service) CreateCertificate(courseID int, nc NewCertificate) (Certificate, error) {
	return svc.repo.CreateCertificate(Certificate{
		CourseID:       courseID,
		IssuedID:       nc.IssuedID,
		CertificateURL: nc.CertificateURL,
	})
}

func (svc *Service) QueryCertificates(courseID int) ([]Certificate, error) {
	return svc.repo.QueryCertificatesByCourse(courseID)
}

func (svc *Service) GetCertificate(id int) (Certificate, error) {
	return svc.repo.GetCertificateByID(id)
}

func (svc *Service) UpdateCertificate(id int, nc NewCertificate) (Certificate, error) {
	cert, err := svc.repo.GetCertificateByID(id)
	if err != nil {
		return Certificate{}, err
	}
	cert.IssuedID = nc.IssuedID
	cert.CertificateURL = nc.CertificateURL
	return svc.repo.UpdateCertificate(cert)
}

func (svc *Service) DeleteCertificate(id int) error {
	return svc.repo.DeleteCertificate(id)
}

// Reviews

// CreateReview creates a review by `usr` for the given course. The pre-check via
// CanReview gives a friendly error; the repository's unique constraint has the
// final word under concurrent submissions.
func (svc *Service) CreateReview(usr user.User, courseID int, nr NewReview) (Review, error) {
	if _, err := svc.repo.GetCourseByID(courseID); err != nil {
		return Review{}, err
	}
	if err := svc.CanReview(usr, courseID); err != nil {
		return Review{}, err
	}
	return svc.repo.CreateReview(Review{
		CourseID:  courseID,
		UserID:    usr.ID,
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryReviews(courseID int) ([]Review, error) {
	return svc.repo.QueryReviewsByCourse(courseID)
}
