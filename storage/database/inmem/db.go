package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/user"
)

type (
	// key is a (student or teacher, course) pair.
	key struct {
		owner int
		crn   int
	}

	scores struct {
		grade      float64
		attendance float64
	}

	userRow struct {
		user.User
		profile user.Profile
	}

	// DB is an in-memory store. Every repository operation runs under mutex,
	// so each one is atomic and isolated from the others.
	DB struct {
		mutex sync.Mutex
		pk    int

		users       map[int]*userRow
		courses     map[int]*course.Course
		assignments map[key]int // -> course_order
		enrollments map[key]int // -> enrollment_order
		current     map[key]scores
		completed   map[key]scores
	}
)

func Open() *DB {
	return &DB{
		users:       make(map[int]*userRow),
		courses:     make(map[int]*course.Course),
		assignments: make(map[key]int),
		enrollments: make(map[key]int),
		current:     make(map[key]scores),
		completed:   make(map[key]scores),
	}
}

func (db *DB) userOfType(id int, typ user.Type) (*userRow, bool) {
	row, ok := db.users[id]
	if !ok || row.Type != typ {
		return nil, false
	}
	return row, true
}

// instructor joins the names of the course's teachers, or course.NotAssigned.
func (db *DB) instructor(crn int) string {
	var names []string
	for k := range db.assignments {
		if k.crn == crn {
			names = append(names, db.users[k.owner].Name)
		}
	}
	if len(names) == 0 {
		return course.NotAssigned
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (db *DB) summary(crs course.Course) course.Summary {
	return course.Summary{Course: crs, Instructor: db.instructor(crs.CRN)}
}

// nextOrder returns 1 + the highest order recorded for owner in orders.
func nextOrder(orders map[key]int, owner int) int {
	var max int
	for k, order := range orders {
		if k.owner == owner && order > max {
			max = order
		}
	}
	return max + 1
}

// checkCourseStudentCount reports whether num_students + delta stays within [0, capacity].
func (db *DB) checkCourseStudentCount(crn, delta int) error {
	crs, ok := db.courses[crn]
	if !ok {
		return course.ErrNotFound
	}
	switch n := crs.NumStudents + delta; {
	case n > crs.Capacity:
		return course.ErrFull
	case n < 0:
		return errors.Errorf("course %d: student count cannot drop below zero", crn)
	}
	return nil
}

// updateCourseStudentCount applies delta to num_students, refusing to leave [0, capacity].
func (db *DB) updateCourseStudentCount(crn, delta int) error {
	if err := db.checkCourseStudentCount(crn, delta); err != nil {
		return err
	}
	db.courses[crn].NumStudents += delta
	return nil
}

func sortCourseSummaries(courses []course.Summary) {
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Name != courses[j].Name {
			return courses[i].Name < courses[j].Name
		}
		return courses[i].CRN < courses[j].CRN
	})
}
