// Package dummydb provides in-memory repositories for tests and local hacking.
package dummydb

import (
	"sync"

	"github.com/masolab/soko/core/cart"
	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

type DB struct {
	mu sync.RWMutex

	userSeq int
	users   map[int]*user.User

	categorySeq int
	categories  map[int]*course.Category

	courseSeq int
	courses   map[int]*course.Course

	lessonSeq int
	lessons   map[int]*course.Lesson

	assignmentSeq int
	assignments   map[int]*course.Assignment

	questionSeq int
	questions   map[int]*course.Question

	examSeq int
	exams   map[int]*course.Exam

	certificateSeq int
	certificates   map[int]*course.Certificate

	reviewSeq int
	reviews   map[int]*course.Review

	cartSeq int
	carts   map[int]*cart.Cart

	cartItemSeq int
	cartItems   map[int]*cart.Item
}

func Open() (*DB, error) {
	db := &DB{
		users:        make(map[int]*user.User),
		categories:   make(map[int]*course.Category),
		courses:      make(map[int]*course.Course),
		lessons:      make(map[int]*course.Lesson),
		assignments:  make(map[int]*course.Assignment),
		questions:    make(map[int]*course.Question),
		exams:        make(map[int]*course.Exam),
		certificates: make(map[int]*course.Certificate),
		reviews:      make(map[int]*course.Review),
		carts:        make(map[int]*cart.Cart),
		cartItems:    make(map[int]*cart.Item),
	}
	return db, nil
}
