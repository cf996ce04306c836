package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) QueryCourses(_ context.Context, teacherID int) ([]course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	type ordered struct {
		course.Course
		order int
	}
	var found []ordered
	for k, order := range repo.db.assignments {
		if k.owner == teacherID {
			found = append(found, ordered{Course: *repo.db.courses[k.crn], order: order})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].order != found[j].order {
			return found[i].order < found[j].order
		}
		return found[i].CRN < found[j].CRN
	})

	courses := make([]course.Course, 0, len(found))
	for _, o := range found {
		courses = append(courses, o.Course)
	}
	return courses, nil
}

func (repo *teacherRepository) QueryCourseStudents(_ context.Context, crn int) ([]course.StudentRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	students := make([]course.StudentRecord, 0)
	for k, order := range repo.db.enrollments {
		if k.crn != crn {
			continue
		}
		row := repo.db.users[k.owner]
		rec := course.StudentRecord{
			StudentID:       row.ID,
			Name:            row.Name,
			Username:        row.Username,
			EnrollmentOrder: order,
		}
		if s, ok := repo.db.current[k]; ok {
			rec.Grade = null.Float64From(s.grade)
			rec.Attendance = null.Float64From(s.attendance)
		}
		students = append(students, rec)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].EnrollmentOrder != students[j].EnrollmentOrder {
			return students[i].EnrollmentOrder < students[j].EnrollmentOrder
		}
		return students[i].StudentID < students[j].StudentID
	})
	return students, nil
}

func (repo *teacherRepository) TeachesCourse(_ context.Context, teacherID, crn int) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	_, ok := repo.db.assignments[key{owner: teacherID, crn: crn}]
	return ok, nil
}

func (repo *teacherRepository) upsertScore(studentID, crn int, set func(*scores)) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	k := key{owner: studentID, crn: crn}
	if _, ok := repo.db.enrollments[k]; !ok {
		return course.ErrNotEnrolled
	}
	s := repo.db.current[k]
	set(&s)
	repo.db.current[k] = s
	return nil
}

func (repo *teacherRepository) UpsertGrade(_ context.Context, studentID, crn int, grade float64) error {
	return repo.upsertScore(studentID, crn, func(s *scores) { s.grade = grade })
}

func (repo *teacherRepository) UpsertAttendance(_ context.Context, studentID, crn int, attendance float64) error {
	return repo.upsertScore(studentID, crn, func(s *scores) { s.attendance = attendance })
}

func (repo *teacherRepository) CompleteCourse(_ context.Context, studentID, crn int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	k := key{owner: studentID, crn: crn}
	if _, ok := repo.db.enrollments[k]; !ok {
		return course.ErrNotEnrolled
	}
	if _, ok := repo.db.completed[k]; ok {
		return course.ErrAlreadyCompleted
	}
	if err := repo.db.updateCourseStudentCount(crn, -1); err != nil {
		return err
	}
	repo.db.completed[k] = repo.db.current[k]
	delete(repo.db.current, k)
	delete(repo.db.enrollments, k)
	return nil
}
