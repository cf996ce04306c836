package admin

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/user"
)

var (
	// errors
	ErrAdminNotRemovable  = core.NewForbiddenError("administrator accounts cannot be removed")
	ErrAlreadyAssigned    = core.NewConflictError("course is already assigned to this teacher")
	ErrAssignmentNotFound = core.NewNotFoundError("course assignment not found")
)

type (
	StudentSummary struct {
		ID              int    `json:"id" db:"id"`
		Name            string `json:"name" db:"name"`
		Username        string `json:"username" db:"username"`
		EnrolledCourses int    `json:"enrolled_courses" db:"enrolled_courses"`
	}

	TeacherSummary struct {
		ID              int    `json:"id" db:"id"`
		Name            string `json:"name" db:"name"`
		Username        string `json:"username" db:"username"`
		CoursesTeaching int    `json:"courses_teaching" db:"courses_teaching"`
	}

	Assignment struct {
		TeacherID   int    `json:"teacher_id" db:"teacher_id"`
		TeacherName string `json:"teacher_name" db:"teacher_name"`
		CourseName  string `json:"course_name" db:"course_name"`
		CRN         int    `json:"crn" db:"crn"`
		CourseOrder int    `json:"course_order" db:"course_order"`
	}

	Repository interface {
		// QueryStudents returns every student ordered by name.
		QueryStudents(ctx context.Context) ([]StudentSummary, error)
		// QueryTeachers returns every teacher ordered by name.
		QueryTeachers(ctx context.Context) ([]TeacherSummary, error)
		// QueryCourses returns every course ordered by name.
		QueryCourses(ctx context.Context) ([]course.Summary, error)
		// QueryCourseAssignments returns every assignment ordered by teacher name then course order.
		QueryCourseAssignments(ctx context.Context) ([]Assignment, error)
		CreateCourse(ctx context.Context, crs course.Course) error
		// DeleteCourse removes the course and everything referencing it.
		DeleteCourse(ctx context.Context, crn int) error
		// DeleteUser removes the account and everything referencing it; admins are refused.
		DeleteUser(ctx context.Context, id int) error
		AssignCourse(ctx context.Context, teacherID, crn int) error
		UnassignCourse(ctx context.Context, teacherID, crn int) error
	}

	Service interface {
		GetAllStudents(ctx context.Context) ([]StudentSummary, error)
		GetAllTeachers(ctx context.Context) ([]TeacherSummary, error)
		GetAllCourses(ctx context.Context) ([]course.Summary, error)
		GetAllCourseAssignments(ctx context.Context) ([]Assignment, error)
		AddCourse(ctx context.Context, nc course.NewCourse) (course.Course, error)
		RemoveCourse(ctx context.Context, crn int) error
		RemoveUser(ctx context.Context, id int) error
		AssignCourseToTeacher(ctx context.Context, teacherID, crn int) error
		UnassignCourseFromTeacher(ctx context.Context, teacherID, crn int) error
		AddStudent(ctx context.Context, ns NewStudent) (user.User, error)
		AddTeacher(ctx context.Context, nt NewTeacher) (user.User, error)
	}

	service struct {
		repo     Repository
		usrSvc   user.Service
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, validate *validator.Validate, logger core.Logger) Service {
	return &service{
		repo:     repo,
		usrSvc:   usrSvc,
		validate: validate,
		logger:   logger,
	}
}

func (svc *service) GetAllStudents(ctx context.Context) ([]StudentSummary, error) {
	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		core.LogFailure(svc.logger, "querying students", err)
		return nil, err
	}
	if students == nil {
		students = []StudentSummary{}
	}
	return students, nil
}

func (svc *service) GetAllTeachers(ctx context.Context) ([]TeacherSummary, error) {
	teachers, err := svc.repo.QueryTeachers(ctx)
	if err != nil {
		core.LogFailure(svc.logger, "querying teachers", err)
		return nil, err
	}
	if teachers == nil {
		teachers = []TeacherSummary{}
	}
	return teachers, nil
}

func (svc *service) GetAllCourses(ctx context.Context) ([]course.Summary, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		core.LogFailure(svc.logger, "querying courses", err)
		return nil, err
	}
	if courses == nil {
		courses = []course.Summary{}
	}
	return courses, nil
}

func (svc *service) GetAllCourseAssignments(ctx context.Context) ([]Assignment, error) {
	assignments, err := svc.repo.QueryCourseAssignments(ctx)
	if err != nil {
		core.LogFailure(svc.logger, "querying course assignments", err)
		return nil, err
	}
	if assignments == nil {
		assignments = []Assignment{}
	}
	return assignments, nil
}

func (svc *service) AddCourse(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return course.Course{}, err
	}
	crs := nc.Course()
	if err := svc.repo.CreateCourse(ctx, crs); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("adding course %d", crs.CRN), err)
		return course.Course{}, err
	}
	svc.logger.Info(fmt.Sprintf("added course %d %q", crs.CRN, crs.Name))
	return crs, nil
}

func (svc *service) RemoveCourse(ctx context.Context, crn int) error {
	if err := svc.repo.DeleteCourse(ctx, crn); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("removing course %d", crn), err)
		return err
	}
	svc.logger.Info(fmt.Sprintf("removed course %d", crn))
	return nil
}

func (svc *service) RemoveUser(ctx context.Context, id int) error {
	if err := svc.repo.DeleteUser(ctx, id); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("removing user %d", id), err)
		return err
	}
	svc.logger.Info(fmt.Sprintf("removed user %d", id))
	return nil
}

func (svc *service) AssignCourseToTeacher(ctx context.Context, teacherID, crn int) error {
	if err := svc.repo.AssignCourse(ctx, teacherID, crn); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("assigning course %d to teacher %d", crn, teacherID), err)
		return err
	}
	return nil
}

func (svc *service) UnassignCourseFromTeacher(ctx context.Context, teacherID, crn int) error {
	if err := svc.repo.UnassignCourse(ctx, teacherID, crn); err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("unassigning course %d from teacher %d", crn, teacherID), err)
		return err
	}
	return nil
}

func (svc *service) AddStudent(ctx context.Context, ns NewStudent) (user.User, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return user.User{}, err
	}
	prof := user.DefaultProfile()
	if ns.MaxUnits != nil {
		prof.MaxUnits = *ns.MaxUnits
	}
	return svc.usrSvc.CreateAccount(ctx, user.NewAccount{
		Username: ns.Username,
		Password: ns.Password,
		Name:     ns.Name,
		Type:     user.TypeStudent,
		Profile:  prof,
	})
}

func (svc *service) AddTeacher(ctx context.Context, nt NewTeacher) (user.User, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return user.User{}, err
	}
	prof := user.DefaultProfile()
	if nt.MaxCourses != nil {
		prof.MaxCourses = *nt.MaxCourses
	}
	if nt.CoursesTaught != nil {
		prof.CoursesTaught = *nt.CoursesTaught
	}
	return svc.usrSvc.CreateAccount(ctx, user.NewAccount{
		Username: nt.Username,
		Password: nt.Password,
		Name:     nt.Name,
		Type:     user.TypeTeacher,
		Profile:  prof,
	})
}
