package dummydb

import (
	"sort"
	"strings"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// Categories

func (repo *courseRepository) CreateCategory(cat course.Category) (course.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.categorySeq++
	cat.ID = repo.db.categorySeq
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *courseRepository) QueryAllCategories() ([]course.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cats := make([]course.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return cats, nil
}

func (repo *courseRepository) GetCategoryByID(id int) (course.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return *cat, nil
	}
	return course.Category{}, course.ErrNotFound
}

// Courses

func (repo *courseRepository) queryCourses() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.courseSeq++
	crs.ID = repo.db.courseSeq
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(id int) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(
	filter course.QueryFilter,
	orderings []core.DBOrdering,
	page core.Pagination,
) ([]course.Course, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := repo.queryCourses()

	// courses with search keyword matching Name or Description ?
	if filter.Search != "" {
		var filtered []course.Course
		search := strings.ToLower(filter.Search)
		for _, c := range courses {
			if strings.Contains(strings.ToLower(c.Name), search) ||
				strings.Contains(strings.ToLower(c.Description), search) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if filter.CategoryID != nil {
		var filtered []course.Course
		for _, c := range courses {
			if c.CategoryID == *filter.CategoryID {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if filter.Level != "" {
		var filtered []course.Course
		for _, c := range courses {
			if c.Level == filter.Level {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if filter.PriceGT != nil {
		var filtered []course.Course
		for _, c := range courses {
			if c.Price > *filter.PriceGT {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if filter.PriceLT != nil {
		var filtered []course.Course
		for _, c := range courses {
			if c.Price < *filter.PriceLT {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}
	if filter.CreatedBy != nil {
		var filtered []course.Course
		for _, c := range courses {
			if c.CreatedBy == *filter.CreatedBy {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	applyOrderings(courses, orderings)

	total := len(courses)
	return core.Paginate(courses, page), total, nil
}

func applyOrderings(courses []course.Course, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		return
	}
	sort.SliceStable(courses, func(i, j int) bool {
		for _, ord := range orderings {
			var less, greater bool
			switch ord.Field {
			case "name":
				less, greater = courses[i].Name < courses[j].Name, courses[i].Name > courses[j].Name
			case "price":
				less, greater = courses[i].Price < courses[j].Price, courses[i].Price > courses[j].Price
			case "created_at":
				less = courses[i].CreatedAt.Before(courses[j].CreatedAt)
				greater = courses[i].CreatedAt.After(courses[j].CreatedAt)
			default:
				continue
			}
			if less {
				return ord.Ascending
			}
			if greater {
				return !ord.Ascending
			}
		}
		return false
	})
}

func (repo *courseRepository) UpdateCourse(crs course.Course) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.courses, id)

	// cascade, as the real schema does
	for lid, lsn := range repo.db.lessons {
		if lsn.CourseID == id {
			delete(repo.db.lessons, lid)
		}
	}
	for aid, asn := range repo.db.assignments {
		if asn.CourseID == id {
			delete(repo.db.assignments, aid)
		}
	}
	for qid, qst := range repo.db.questions {
		if qst.CourseID == id {
			delete(repo.db.questions, qid)
		}
	}
	for eid, exm := range repo.db.exams {
		if exm.CourseID == id {
			delete(repo.db.exams, eid)
		}
	}
	for cid, cert := range repo.db.certificates {
		if cert.CourseID == id {
			delete(repo.db.certificates, cid)
		}
	}
	for rid, rev := range repo.db.reviews {
		if rev.CourseID == id {
			delete(repo.db.reviews, rid)
		}
	}
	return nil
}

// Lessons

func (repo *courseRepository) CreateLesson(lsn course.Lesson) (course.Lesson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.lessonSeq++
	lsn.ID = repo.db.lessonSeq
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) QueryLessonsByCourse(courseID int) ([]course.Lesson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	lessons := make([]course.Lesson, 0)
	for _, lsn := range repo.db.lessons {
		if lsn.CourseID == courseID {
			lessons = append(lessons, *lsn)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].Position != lessons[j].Position {
			return lessons[i].Position < lessons[j].Position
		}
		return lessons[i].ID < lessons[j].ID
	})
	return lessons, nil
}

func (repo *courseRepository) GetLessonByID(id int) (course.Lesson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if lsn, ok := repo.db.lessons[id]; ok {
		return *lsn, nil
	}
	return course.Lesson{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateLesson(lsn course.Lesson) (course.Lesson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.lessons[lsn.ID]; !ok {
		return course.Lesson{}, course.ErrNotFound
	}
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) DeleteLesson(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.lessons, id)
	return nil
}

// Assignments

func (repo *courseRepository) CreateAssignment(asn course.Assignment) (course.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.assignmentSeq++
	asn.ID = repo.db.assignmentSeq
	repo.db.assignments[asn.ID] = &asn
	return asn, nil
}

func (repo *courseRepository) QueryAssignmentsByCourse(courseID int) ([]course.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	asns := make([]course.Assignment, 0)
	for _, asn := range repo.db.assignments {
		if asn.CourseID == courseID {
			asns = append(asns, *asn)
		}
	}
	sort.Slice(asns, func(i, j int) bool { return asns[i].ID < asns[j].ID })
	return asns, nil
}

func (repo *courseRepository) GetAssignmentByID(id int) (course.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if asn, ok := repo.db.assignments[id]; ok {
		return *asn, nil
	}
	return course.Assignment{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateAssignment(asn course.Assignment) (course.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.assignments[asn.ID]; !ok {
		return course.Assignment{}, course.ErrNotFound
	}
	repo.db.assignments[asn.ID] = &asn
	return asn, nil
}

func (repo *courseRepository) DeleteAssignment(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.assignments, id)
	return nil
}

// Questions

func (repo *courseRepository) CreateQuestion(qst course.Question) (course.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.questionSeq++
	qst.ID = repo.db.questionSeq
	repo.db.questions[qst.ID] = &qst
	return qst, nil
}

func (repo *courseRepository) QueryQuestionsByCourse(courseID int) ([]course.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	qsts := make([]course.Question, 0)
	for _, qst := range repo.db.questions {
		if qst.CourseID == courseID {
			qsts = append(qsts, *qst)
		}
	}
	sort.Slice(qsts, func(i, j int) bool { return qsts[i].ID < qsts[j].ID })
	return qsts, nil
}

func (repo *courseRepository) GetQuestionByID(id int) (course.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if qst, ok := repo.db.questions[id]; ok {
		return *qst, nil
	}
	return course.Question{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateQuestion(qst course.Question) (course.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.questions[qst.ID]; !ok {
		return course.Question{}, course.ErrNotFound
	}
	repo.db.questions[qst.ID] = &qst
	return qst, nil
}

func (repo *courseRepository) DeleteQuestion(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.questions, id)
	return nil
}

// Exams

func (repo *courseRepository) CreateExam(exm course.Exam) (course.Exam, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.examSeq++
	exm.ID = repo.db.examSeq
	repo.db.exams[exm.ID] = &exm
	return exm, nil
}

func (repo *courseRepository) QueryExamsByCourse(courseID int) ([]course.Exam, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	exams := make([]course.Exam, 0)
	for _, exm := range repo.db.exams {
		if exm.CourseID == courseID {
			exams = append(exams, *exm)
		}
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, nil
}

func (repo *courseRepository) GetExamByID(id int) (course.Exam, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if exm, ok := repo.db.exams[id]; ok {
		return *exm, nil
	}
	return course.Exam{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateExam(exm course.Exam) (course.Exam, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.exams[exm.ID]; !ok {
		return course.Exam{}, course.ErrNotFound
	}
	repo.db.exams[exm.ID] = &exm
	return exm, nil
}

func (repo *courseRepository) DeleteExam(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.exams, id)
	return nil
}

// Certificates

func (repo *courseRepository) CreateCertificate(cert course.Certificate) (course.Certificate, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.certificateSeq++
	cert.ID = repo.db.certificateSeq
	repo.db.certificates[cert.ID] = &cert
	return cert, nil
}

func (repo *courseRepository) QueryCertificatesByCourse(courseID int) ([]course.Certificate, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	certs := make([]course.Certificate, 0)
	for _, cert := range repo.db.certificates {
		if cert.CourseID == courseID {
			certs = append(certs, *cert)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].ID < certs[j].ID })
	return certs, nil
}

func (repo *courseRepository) GetCertificateByID(id int) (course.Certificate, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cert, ok := repo.db.certificates[id]; ok {
		return *cert, nil
	}
	return course.Certificate{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCertificate(cert course.Certificate) (course.Certificate, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.certificates[cert.ID]; !ok {
		return course.Certificate{}, course.ErrNotFound
	}
	repo.db.certificates[cert.ID] = &cert
	return cert, nil
}

func (repo *courseRepository) DeleteCertificate(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.certificates, id)
	return nil
}

// Reviews

func (repo *courseRepository) CreateReview(rev course.Review) (course.Review, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// same uniqueness the schema constraint enforces
	for _, existing := range repo.db.reviews {
		if existing.CourseID == rev.CourseID && existing.UserID == rev.UserID {
			return course.Review{}, course.ErrAlreadyReviewed
		}
	}

	repo.db.reviewSeq++
	rev.ID = repo.db.reviewSeq
	repo.db.reviews[rev.ID] = &rev
	return rev, nil
}

func (repo *courseRepository) QueryReviewsByCourse(courseID int) ([]course.Review, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	revs := make([]course.Review, 0)
	for _, rev := range repo.db.reviews {
		if rev.CourseID == courseID {
			revs = append(revs, *rev)
		}
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].ID < revs[j].ID })
	return revs, nil
}

func (repo *courseRepository) GetCourseReviewByUser(courseID, userID int) (course.Review, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, rev := range repo.db.reviews {
		if rev.CourseID == courseID && rev.UserID == userID {
			return *rev, nil
		}
	}
	return course.Review{}, course.ErrNotFound
}
