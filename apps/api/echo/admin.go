package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/admin"
	"github.com/trezcool/registrar/core/course"
)

type adminApi struct {
	svc admin.Service
}

func registerAdminAPI(g *echo.Group, deps ServerDeps) {
	api := adminApi{svc: deps.AdminSvc}

	g.GET("/students", api.queryStudents)
	g.POST("/students", api.createStudent)
	g.GET("/teachers", api.queryTeachers)
	g.POST("/teachers", api.createTeacher)
	g.DELETE("/users/:id", api.destroyUser)

	g.GET("/courses", api.queryCourses)
	g.POST("/courses", api.createCourse)
	g.DELETE("/courses/:crn", api.destroyCourse)

	g.GET("/assignments", api.queryAssignments)
	g.POST("/assignments", api.createAssignment)
	g.DELETE("/assignments/:teacher_id/:crn", api.destroyAssignment)
}

// Handlers

func (api *adminApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.GetAllStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *adminApi) createStudent(ctx echo.Context) error {
	var data admin.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	usr, err := api.svc.AddStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *adminApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.GetAllTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *adminApi) createTeacher(ctx echo.Context) error {
	var data admin.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	usr, err := api.svc.AddTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding teacher")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *adminApi) destroyUser(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveUser(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "removing user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.GetAllCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	crs, err := api.svc.AddCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *adminApi) destroyCourse(ctx echo.Context) error {
	crn, err := intParam(ctx, "crn")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveCourse(ctx.Request().Context(), crn); err != nil {
		return errors.Wrap(err, "removing course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) queryAssignments(ctx echo.Context) error {
	assignments, err := api.svc.GetAllCourseAssignments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *adminApi) createAssignment(ctx echo.Context) error {
	var data AssignmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignmentRequest")
	}
	if err := api.svc.AssignCourseToTeacher(ctx.Request().Context(), data.TeacherID, data.CRN); err != nil {
		return errors.Wrap(err, "assigning course")
	}
	return ctx.JSON(http.StatusCreated, data)
}

func (api *adminApi) destroyAssignment(ctx echo.Context) error {
	teacherID, err := intParam(ctx, "teacher_id")
	if err != nil {
		return err
	}
	crn, err := intParam(ctx, "crn")
	if err != nil {
		return err
	}
	if err = api.svc.UnassignCourseFromTeacher(ctx.Request().Context(), teacherID, crn); err != nil {
		return errors.Wrap(err, "unassigning course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AssignmentRequest struct {
	TeacherID int `json:"teacher_id"`
	CRN       int `json:"crn"`
}
