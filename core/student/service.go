package student

import (
	"context"
	"fmt"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/course"
)

type (
	Repository interface {
		// QueryAvailableCourses returns the courses with a free seat that the student
		// neither takes nor has completed, ordered by name.
		QueryAvailableCourses(ctx context.Context, studentID int) ([]course.Summary, error)
		// QueryCurrentCourses returns the student's enrollments in enrollment order.
		QueryCurrentCourses(ctx context.Context, studentID int) ([]course.Enrollment, error)
		// QueryCompletedCourses returns the student's completed courses ordered by name.
		QueryCompletedCourses(ctx context.Context, studentID int) ([]course.Completion, error)
		// Enroll reserves a seat and records the enrollment in one transaction.
		Enroll(ctx context.Context, studentID, crn int) error
		// Drop removes the enrollment and its current grade and frees the seat in one transaction.
		Drop(ctx context.Context, studentID, crn int) error
	}

	Service interface {
		GetAvailableCourses(ctx context.Context, studentID int) ([]course.Summary, error)
		GetCurrentCourses(ctx context.Context, studentID int) ([]course.Enrollment, error)
		GetCompletedCourses(ctx context.Context, studentID int) ([]course.Completion, error)
		EnrollInCourse(ctx context.Context, studentID, crn int) error
		DropCourse(ctx context.Context, studentID, crn int) error
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

func (svc *service) GetAvailableCourses(ctx context.Context, studentID int) ([]course.Summary, error) {
	courses, err := svc.repo.QueryAvailableCourses(ctx, studentID)
	if err != nil {
		core.LogFailure(svc.logger, "querying available courses", err)
		return nil, err
	}
	if courses == nil {
		courses = []course.Summary{}
	}
	return courses, nil
}

func (svc *service) GetCurrentCourses(ctx context.Context, studentID int) ([]course.Enrollment, error) {
	courses, err := svc.repo.QueryCurrentCourses(ctx, studentID)
	if err != nil {
		core.LogFailure(svc.logger, "querying current courses", err)
		return nil, err
	}
	if courses == nil {
		courses = []course.Enrollment{}
	}
	return courses, nil
}

func (svc *service) GetCompletedCourses(ctx context.Context, studentID int) ([]course.Completion, error) {
	courses, err := svc.repo.QueryCompletedCourses(ctx, studentID)
	if err != nil {
		core.LogFailure(svc.logger, "querying completed courses", err)
		return nil, err
	}
	if courses == nil {
		courses = []course.Completion{}
	}
	return courses, nil
}

func (svc *service) EnrollInCourse(ctx context.Context, studentID, crn int) error {
	if err := svc.repo.Enroll(ctx, studentID, crn); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("enrolling student %d in course %d", studentID, crn), err)
		return err
	}
	svc.logger.Info(fmt.Sprintf("student %d enrolled in course %d", studentID, crn))
	return nil
}

func (svc *service) DropCourse(ctx context.Context, studentID, crn int) error {
	if err := svc.repo.Drop(ctx, studentID, crn); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("dropping course %d for student %d", crn, studentID), err)
		return err
	}
	svc.logger.Info(fmt.Sprintf("student %d dropped course %d", studentID, crn))
	return nil
}
