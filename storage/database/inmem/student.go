package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/student"
	"github.com/trezcool/registrar/core/user"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryAvailableCourses(_ context.Context, studentID int) ([]course.Summary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	courses := make([]course.Summary, 0)
	for crn, crs := range repo.db.courses {
		k := key{owner: studentID, crn: crn}
		if crs.IsFull() {
			continue
		}
		if _, ok := repo.db.enrollments[k]; ok {
			continue
		}
		if _, ok := repo.db.completed[k]; ok {
			continue
		}
		courses = append(courses, repo.db.summary(*crs))
	}
	sortCourseSummaries(courses)
	return courses, nil
}

func (repo *studentRepository) QueryCurrentCourses(_ context.Context, studentID int) ([]course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	courses := make([]course.Enrollment, 0)
	for k, order := range repo.db.enrollments {
		if k.owner != studentID {
			continue
		}
		enr := course.Enrollment{
			Summary:         repo.db.summary(*repo.db.courses[k.crn]),
			EnrollmentOrder: order,
		}
		if s, ok := repo.db.current[k]; ok {
			enr.Grade = null.Float64From(s.grade)
			enr.Attendance = null.Float64From(s.attendance)
		}
		courses = append(courses, enr)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].EnrollmentOrder != courses[j].EnrollmentOrder {
			return courses[i].EnrollmentOrder < courses[j].EnrollmentOrder
		}
		return courses[i].CRN < courses[j].CRN
	})
	return courses, nil
}

func (repo *studentRepository) QueryCompletedCourses(_ context.Context, studentID int) ([]course.Completion, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	courses := make([]course.Completion, 0)
	for k, s := range repo.db.completed {
		if k.owner != studentID {
			continue
		}
		crs := repo.db.courses[k.crn]
		courses = append(courses, course.Completion{
			CRN:        crs.CRN,
			Name:       crs.Name,
			Credits:    crs.Credits,
			Grade:      s.grade,
			Attendance: s.attendance,
		})
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Name != courses[j].Name {
			return courses[i].Name < courses[j].Name
		}
		return courses[i].CRN < courses[j].CRN
	})
	return courses, nil
}

func (repo *studentRepository) Enroll(_ context.Context, studentID, crn int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.userOfType(studentID, user.TypeStudent); !ok {
		return user.ErrStudentNotFound
	}
	k := key{owner: studentID, crn: crn}
	if _, ok := repo.db.completed[k]; ok {
		return course.ErrAlreadyCompleted
	}
	if _, ok := repo.db.enrollments[k]; ok {
		return course.ErrAlreadyEnrolled
	}
	if err := repo.db.updateCourseStudentCount(crn, 1); err != nil {
		return err
	}
	repo.db.enrollments[k] = nextOrder(repo.db.enrollments, studentID)
	return nil
}

func (repo *studentRepository) Drop(_ context.Context, studentID, crn int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	k := key{owner: studentID, crn: crn}
	if _, ok := repo.db.enrollments[k]; !ok {
		return course.ErrNotEnrolled
	}
	if err := repo.db.updateCourseStudentCount(crn, -1); err != nil {
		return err
	}
	delete(repo.db.enrollments, k)
	delete(repo.db.current, k)
	return nil
}
