package sqlxrepos

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

// Categories

func (repo *courseRepository) CreateCategory(cat course.Category) (course.Category, error) {
	err := repo.db.QueryRow(
		`INSERT INTO category (name) VALUES ($1) RETURNING id`, cat.Name,
	).Scan(&cat.ID)
	if err != nil {
		return course.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo *courseRepository) QueryAllCategories() ([]course.Category, error) {
	cats := make([]course.Category, 0)
	err := repo.db.Select(&cats, `SELECT id, name FROM category ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (repo *courseRepository) GetCategoryByID(id int) (course.Category, error) {
	var cat course.Category
	err := repo.db.Get(&cat, `SELECT id, name FROM category WHERE id = $1`, id)
	if err != nil {
		return course.Category{}, trapNoRowsErr(err, course.ErrNotFound, "finding category")
	}
	return cat, nil
}

// Courses

type courseRow struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Level       string    `db:"level"`
	Price       int       `db:"price"`
	CategoryID  int       `db:"category_id"`
	CreatedBy   int       `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row courseRow) course() course.Course {
	return course.Course(row)
}

const courseCols = `id, name, description, level, price, category_id, created_by, created_at, updated_at`

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	err := repo.db.QueryRow(
		`INSERT INTO course (name, description, level, price, category_id, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		crs.Name, crs.Description, crs.Level, crs.Price, crs.CategoryID,
		crs.CreatedBy, crs.CreatedAt, crs.UpdatedAt,
	).Scan(&crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(id int) (course.Course, error) {
	var row courseRow
	err := repo.db.Get(&row, `SELECT `+courseCols+` FROM course WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course")
	}
	return row.course(), nil
}

func (repo *courseRepository) FilterCourses(
	filter course.QueryFilter,
	orderings []core.DBOrdering,
	page core.Pagination,
) ([]course.Course, int, error) {
	var conds []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR description ILIKE %[1]s)", arg(val)))
	}
	if filter.CategoryID != nil {
		conds = append(conds, "category_id = "+arg(*filter.CategoryID))
	}
	if filter.Level != "" {
		conds = append(conds, "level = "+arg(filter.Level))
	}
	if filter.PriceGT != nil {
		conds = append(conds, "price > "+arg(*filter.PriceGT))
	}
	if filter.PriceLT != nil {
		conds = append(conds, "price < "+arg(*filter.PriceLT))
	}
	if filter.CreatedBy != nil {
		conds = append(conds, "created_by = "+arg(*filter.CreatedBy))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM course`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting courses")
	}

	orderBy := "id ASC"
	if len(orderings) > 0 {
		orderList := make([]string, 0, len(orderings))
		for _, ord := range orderings {
			orderList = append(orderList, ord.String())
		}
		orderBy = strings.Join(orderList, ", ")
	}

	page.Clean()
	query := fmt.Sprintf(
		`SELECT %s FROM course%s ORDER BY %s LIMIT %s OFFSET %s`,
		courseCols, where, orderBy, arg(page.Limit()), arg(page.Offset()),
	)

	var rows []courseRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.course())
	}
	return courses, total, nil
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	var row courseRow
	err := repo.db.Get(
		&row,
		`UPDATE course
		 SET name = $1, description = $2, level = $3, price = $4, category_id = $5, updated_at = $6
		 WHERE id = $7
		 RETURNING `+courseCols,
		crs.Name, crs.Description, crs.Level, crs.Price, crs.CategoryID, crs.UpdatedAt, crs.ID,
	)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "updating course")
	}
	return row.course(), nil
}

func (repo *courseRepository) DeleteCourse(id int) error {
	// sub-resources go with it via ON DELETE CASCADE
	if _, err := repo.db.Exec(`DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

// Lessons

type lessonRow struct {
	ID       int         `db:"id"`
	CourseID int         `db:"course_id"`
	Title    string      `db:"title"`
	VideoURL null.String `db:"video_url"`
	Content  string      `db:"content"`
	Position int         `db:"position"`
}

const lessonCols = `id, course_id, title, video_url, content, position`

func (repo *courseRepository) CreateLesson(lsn course.Lesson) (course.Lesson, error) {
	err := repo.db.QueryRow(
		`INSERT INTO lesson (course_id, title, video_url, content, position)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		lsn.CourseID, lsn.Title, lsn.VideoURL, lsn.Content, lsn.Position,
	).Scan(&lsn.ID)
	if err != nil {
		return course.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return lsn, nil
}

func (repo *courseRepository) QueryLessonsByCourse(courseID int) ([]course.Lesson, error) {
	var rows []lessonRow
	err := repo.db.Select(
		&rows,
		`SELECT `+lessonCols+` FROM lesson WHERE course_id = $1 ORDER BY position, id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]course.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, course.Lesson(row))
	}
	return lessons, nil
}

func (repo *courseRepository) GetLessonByID(id int) (course.Lesson, error) {
	var row lessonRow
	err := repo.db.Get(&row, `SELECT `+lessonCols+` FROM lesson WHERE id = $1`, id)
	if err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrNotFound, "finding lesson")
	}
	return course.Lesson(row), nil
}

func (repo *courseRepository) UpdateLesson(lsn course.Lesson) (course.Lesson, error) {
	var row lessonRow
	err := repo.db.Get(
		&row,
		`UPDATE lesson SET title = $1, video_url = $2, content = $3, position = $4
		 WHERE id = $5
		 RETURNING `+lessonCols,
		lsn.Title, lsn.VideoURL, lsn.Content, lsn.Position, lsn.ID,
	)
	if err != nil {
		return course.Lesson{}, trapNoRowsErr(err, course.ErrNotFound, "updating lesson")
	}
	return course.Lesson(row), nil
}

func (repo *courseRepository) DeleteLesson(id int) error {
	if _, err := repo.db.Exec(`DELETE FROM lesson WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}

// Assignments

type assignmentRow struct {
	ID          int       `db:"id"`
	CourseID    int       `db:"course_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DueDate     null.Time `db:"due_date"`
}

const assignmentCols = `id, course_id, title, description, due_date`

func (repo *courseRepository) CreateAssignment(asn course.Assignment) (course.Assignment, error) {
	err := repo.db.QueryRow(
		`INSERT INTO assignment (course_id, title, description, due_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		asn.CourseID, asn.Title, asn.Description, asn.DueDate,
	).Scan(&asn.ID)
	if err != nil {
		return course.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asn, nil
}

func (repo *courseRepository) QueryAssignmentsByCourse(courseID int) ([]course.Assignment, error) {
	var rows []assignmentRow
	err := repo.db.Select(
		&rows,
		`SELECT `+assignmentCols+` FROM assignment WHERE course_id = $1 ORDER BY id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asns := make([]course.Assignment, 0, len(rows))
	for _, row := range rows {
		asns = append(asns, course.Assignment(row))
	}
	return asns, nil
}

func (repo *courseRepository) GetAssignmentByID(id int) (course.Assignment, error) {
	var row assignmentRow
	err := repo.db.Get(&row, `SELECT `+assignmentCols+` FROM assignment WHERE id = $1`, id)
	if err != nil {
		return course.Assignment{}, trapNoRowsErr(err, course.ErrNotFound, "finding assignment")
	}
	return course.Assignment(row), nil
}

func (repo *courseRepository) UpdateAssignment(asn course.Assignment) (course.Assignment, error) {
	var row assignmentRow
	err := repo.db.Get(
		&row,
		`UPDATE assignment SET title = $1, description = $2, due_date = $3
		 WHERE id = $4
		 RETURNING `+assignmentCols,
		asn.Title, asn.Description, asn.DueDate, asn.ID,
	)
	if err != nil {
		return course.Assignment{}, trapNoRowsErr(err, course.ErrNotFound, "updating assignment")
	}
	return course.Assignment(row), nil
}

func (repo *courseRepository) DeleteAssignment(id int) error {
	if _, err := repo.db.Exec(`DELETE FROM assignment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}

// Questions

type questionRow struct {
	ID         int       `db:"id"`
	CourseID   int       `db:"course_id"`
	Text       string    `db:"text"`
	Difficulty string    `db:"difficulty"`
	CreatedAt  time.Time `db:"created_at"`
}

const questionCols = `id, course_id, text, difficulty, created_at`

func (repo *courseRepository) CreateQuestion(qst course.Question) (course.Question, error) {
	err := repo.db.QueryRow(
		`INSERT INTO question (course_id, text, difficulty, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		qst.CourseID, qst.Text, qst.Difficulty, qst.CreatedAt,
	).Scan(&qst.ID)
	if err != nil {
		return course.Question{}, errors.Wrap(err, "inserting question")
	}
	return qst, nil
}

func (repo *courseRepository) QueryQuestionsByCourse(courseID int) ([]course.Question, error) {
	var rows []questionRow
	err := repo.db.Select(
		&rows,
		`SELECT `+questionCols+` FROM question WHERE course_id = $1 ORDER BY id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qsts := make([]course.Question, 0, len(rows))
	for _, row := range rows {
		qsts = append(qsts, course.Question(row))
	}
	return qsts, nil
}

func (repo *courseRepository) GetQuestionByID(id int) (course.Question, error) {
	var row questionRow
	err := repo.db.Get(&row, `SELECT `+questionCols+` FROM question WHERE id = $1`, id)
	if err != nil {
		return course.Question{}, trapNoRowsErr(err, course.ErrNotFound, "finding question")
	}
	return course.Question(row), nil
}

func (repo *courseRepository) UpdateQuestion(qst course.Question) (course.Question, error) {
	var row questionRow
	err := repo.db.Get(
		&row,
		`UPDATE question SET text = $1, difficulty = $2
		 WHERE id = $3
		 RETURNING `+questionCols,
		qst.Text, qst.Difficulty, qst.ID,
	)
	if err != nil {
		return course.Question{}, trapNoRowsErr(err, course.ErrNotFound, "updating question")
	}
	return course.Question(row), nil
}

func (repo *courseRepository) DeleteQuestion(id int) error {
	if _, err := repo.db.Exec(`DELETE FROM question WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return nil
}

// Exams

type examRow struct {
	ID           int    `db:"id"`
	CourseID     int    `db:"course_id"`
	Title        string `db:"title"`
	PassingScore int    `db:"passing_score"`
	Duration     int    `db:"duration"`
}

const examCols = `id, course_id, title, passing_score, duration`

func (repo *courseRepository) CreateExam(exm course.Exam) (course.Exam, error) {
	err := repo.db.QueryRow(
		`INSERT INTO exam (course_id, title, passing_score, duration)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		exm.CourseID, exm.Title, exm.PassingScore, exm.Duration,
	).Scan(&exm.ID)
	if err != nil {
		return course.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return exm, nil
}

func (repo *courseRepository) QueryExamsByCourse(courseID int) ([]course.Exam, error) {
	var rows []examRow
	err := repo.db.Select(
		&rows,
		`SELECT `+examCols+` FROM exam WHERE course_id = $1 ORDER BY id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	exams := make([]course.Exam, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, course.Exam(row))
	}
	return exams, nil
}

func (repo *courseRepository) GetExamByID(id int) (course.Exam, error) {
	var row examRow
	err := repo.db.Get(&row, `SELECT `+examCols+` FROM exam WHERE id = $1`, id)
	if err != nil {
		return course.Exam{}, trapNoRowsErr(err, course.ErrNotFound, "finding exam")
	}
	return course.Exam(row), nil
}

func (repo *courseRepository) UpdateExam(exm course.Exam) (course.Exam, error) {
	var row examRow
	err := repo.db.Get(
		&row,
		`UPDATE exam SET title = $1, passing_score = $2, duration = $3
		 WHERE id = $4
		 RETURNING `+examCols,
		exm.Title, exm.PassingScore, exm.Duration, exm.ID,
	)
	if err != nil {
		return course.Exam{}, trapNoRowsErr(err, course.ErrNotFound, "updating exam")
	}
	return course.Exam(row), nil
}

func (repo *courseRepository) DeleteExam(id int) error {
	if _, err := repo.db.Exec(`DELETE FROM exam WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return nil
}

// Certificates

type certificateRow struct {
	ID             int    `db:"id"`
	CourseID       int    `db:"course_id"`
	IssuedID       string `db:"issued_id"`
	CertificateURL string `db:"certificate_url"`
}

const certificateCols = `id, course_id, issued_id, certificate_url`

func (repo *courseRepository) CreateCertificate(cert course.Certificate) (course.Certificate, error) {
	err := repo.db.QueryRow(
		`INSERT INTO certificate (course_id, issued_id, certificate_url)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		cert.CourseID, cert.IssuedID, cert.CertificateURL,
	).Scan(&cert.ID)
	if err != nil {
		return course.Certificate{}, errors.Wrap(err, "inserting certificate")
	}
	return cert, nil
}

func (repo *courseRepository) QueryCertificatesByCourse(courseID int) ([]course.Certificate, error) {
	var rows []certificateRow
	err := repo.db.Select(
		&rows,
		`SELECT `+certificateCols+` FROM certificate WHERE course_id = $1 ORDER BY id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying certificates")
	}
	certs := make([]course.Certificate, 0, len(rows))
	for _, row := range rows {
		certs = append(certs, course.Certificate(row))
	}
	return certs, nil
}

func (repo *courseRepository) GetCertificateByID(id int) (course.Certificate, error) {
	var row certificateRow
	err := repo.db.Get(&row, `SELECT `+certificateCols+` FROM certificate WHERE id = $1`, id)
	if err != nil {
		return course.Certificate{}, trapNoRowsErr(err, course.ErrNotFound, "finding certificate")
	}
	return course.Certificate(row), nil
}

func (repo *courseRepository) UpdateCertificate(cert course.Certificate) (course.Certificate, error) {
	var row certificateRow
	err := repo.db.Get(
		&row,
		`UPDATE certificate SET issued_id = $1, certificate_url = $2
		 WHERE id = $3
		 RETURNING `+certificateCols,
		cert.IssuedID, cert.CertificateURL, cert.ID,
	)
	if err != nil {
		return course.Certificate{}, trapNoRowsErr(err, course.ErrNotFound, "updating certificate")
	}
	return course.Certificate(row), nil
}

func (repo *courseRepository) DeleteCertificate(id int) error {
	if _, err := repo.db.Exec(`DELETE FROM certificate WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting certificate")
	}
	return nil
}

// Reviews

type reviewRow struct {
	ID        int         `db:"id"`
	CourseID  int         `db:"course_id"`
	UserID    int         `db:"user_id"`
	Rating    int         `db:"rating"`
	Comment   null.String `db:"comment"`
	CreatedAt time.Time   `db:"created_at"`
}

const reviewCols = `id, course_id, user_id, rating, comment, created_at`

func (repo *courseRepository) CreateReview(rev course.Review) (course.Review, error) {
	err := repo.db.QueryRow(
		`INSERT INTO review (course_id, user_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		rev.CourseID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt,
	).Scan(&rev.ID)
	if err != nil {
		// the constraint is the authority on one-review-per-user,
		// whatever pre-checks ran before us
		if isUniqueViolation(err, "review_course_id_user_id_key") {
			return course.Review{}, course.ErrAlreadyReviewed
		}
		return course.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (repo *courseRepository) QueryReviewsByCourse(courseID int) ([]course.Review, error) {
	var rows []reviewRow
	err := repo.db.Select(
		&rows,
		`SELECT `+reviewCols+` FROM review WHERE course_id = $1 ORDER BY id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	revs := make([]course.Review, 0, len(rows))
	for _, row := range rows {
		revs = append(revs, course.Review(row))
	}
	return revs, nil
}

func (repo *courseRepository) GetCourseReviewByUser(courseID, userID int) (course.Review, error) {
	var row reviewRow
	err := repo.db.Get(
		&row,
		`SELECT `+reviewCols+` FROM review WHERE course_id = $1 AND user_id = $2`,
		courseID, userID,
	)
	if err != nil {
		return course.Review{}, trapNoRowsErr(err, course.ErrNotFound, "finding review")
	}
	return course.Review(row), nil
}
