package teacher

import (
	"context"
	"fmt"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/course"
)

type (
	Repository interface {
		// QueryCourses returns the teacher's courses in assignment order.
		QueryCourses(ctx context.Context, teacherID int) ([]course.Course, error)
		// QueryCourseStudents returns the course roster in enrollment order.
		QueryCourseStudents(ctx context.Context, crn int) ([]course.StudentRecord, error)
		TeachesCourse(ctx context.Context, teacherID, crn int) (bool, error)
		// UpsertGrade sets the grade of an enrolled student, leaving the attendance untouched.
		UpsertGrade(ctx context.Context, studentID, crn int, grade float64) error
		// UpsertAttendance sets the attendance of an enrolled student, leaving the grade untouched.
		UpsertAttendance(ctx context.Context, studentID, crn int, attendance float64) error
		// CompleteCourse archives the current grade and ends the enrollment in one transaction.
		CompleteCourse(ctx context.Context, studentID, crn int) error
	}

	Service interface {
		GetTeacherCourses(ctx context.Context, teacherID int) ([]course.Course, error)
		GetCourseStudents(ctx context.Context, crn int) ([]course.StudentRecord, error)
		TeachesCourse(ctx context.Context, teacherID, crn int) (bool, error)
		UpdateStudentGrade(ctx context.Context, studentID, crn int, grade float64) error
		UpdateStudentAttendance(ctx context.Context, studentID, crn int, attendance float64) error
		CompleteCourseForStudent(ctx context.Context, studentID, crn int) error
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (svc *service) GetTeacherCourses(ctx context.Context, teacherID int) ([]course.Course, error) {
	courses, err := svc.repo.QueryCourses(ctx, teacherID)
	if err != nil {
		core.LogFailure(svc.logger, "querying teacher courses", err)
		return nil, err
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return courses, nil
}

func (svc *service) GetCourseStudents(ctx context.Context, crn int) ([]course.StudentRecord, error) {
	students, err := svc.repo.QueryCourseStudents(ctx, crn)
	if err != nil {
		core.LogFailure(svc.logger, "querying course students", err)
		return nil, err
	}
	if students == nil {
		students = []course.StudentRecord{}
	}
	return students, nil
}

func (svc *service) TeachesCourse(ctx context.Context, teacherID, crn int) (bool, error) {
	ok, err := svc.repo.TeachesCourse(ctx, teacherID, crn)
	if err != nil {
		core.LogFailure(svc.logger, "checking course assignment", err)
		return false, err
	}
	return ok, nil
}

func (svc *service) UpdateStudentGrade(ctx context.Context, studentID, crn int, grade float64) error {
	if err := course.CheckScore(grade); err != nil {
		return err
	}
	if err := svc.repo.UpsertGrade(ctx, studentID, crn, grade); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("grading student %d in course %d", studentID, crn), err)
		return err
	}
	return nil
}

func (svc *service) UpdateStudentAttendance(ctx context.Context, studentID, crn int, attendance float64) error {
	if err := course.CheckScore(attendance); err != nil {
		return err
	}
	if err := svc.repo.UpsertAttendance(ctx, studentID, crn, attendance); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("recording attendance of student %d in course %d", studentID, crn), err)
		return err
	}
	return nil
}

func (svc *service) CompleteCourseForStudent(ctx context.Context, studentID, crn int) error {
	if err := svc.repo.CompleteCourse(ctx, studentID, crn); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("completing course %d for student %d", crn, studentID), err)
		return err
	}
	svc.logger.Info(fmt.Sprintf("student %d completed course %d", studentID, crn))
	return nil
}
