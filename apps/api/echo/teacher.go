package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/teacher"
)

type teacherApi struct {
	svc      teacher.Service
	validate *validator.Validate
}

func registerTeacherAPI(g *echo.Group, deps ServerDeps) {
	api := teacherApi{svc: deps.TeacherSvc, validate: deps.Validate}

	g.GET("/courses", api.queryCourses)

	// course-scoped endpoints
	cg := g.Group("/courses/:crn", teachesCourseMiddleware(api.svc))
	cg.GET("/students", api.queryStudents)
	cg.PUT("/students/:id/grade", api.updateGrade)
	cg.PUT("/students/:id/attendance", api.updateAttendance)
	cg.POST("/students/:id/complete", api.complete)
}

// Handlers

func (api *teacherApi) queryCourses(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.GetTeacherCourses(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying teacher courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *teacherApi) queryStudents(ctx echo.Context) error {
	crn, _ := ctx.Get(contextCRNKey).(int)
	students, err := api.svc.GetCourseStudents(ctx.Request().Context(), crn)
	if err != nil {
		return errors.Wrap(err, "querying course students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *teacherApi) updateGrade(ctx echo.Context) error {
	crn, _ := ctx.Get(contextCRNKey).(int)
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data GradeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	if err = api.svc.UpdateStudentGrade(ctx.Request().Context(), studentID, crn, *data.Grade); err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *teacherApi) updateAttendance(ctx echo.Context) error {
	crn, _ := ctx.Get(contextCRNKey).(int)
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data AttendanceRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	if err = api.svc.UpdateStudentAttendance(ctx.Request().Context(), studentID, crn, *data.Attendance); err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *teacherApi) complete(ctx echo.Context) error {
	crn, _ := ctx.Get(contextCRNKey).(int)
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.CompleteCourseForStudent(ctx.Request().Context(), studentID, crn); err != nil {
		return errors.Wrap(err, "completing course")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Course completed."})
}

type (
	// Scores are nil when absent from the body.
	GradeRequest struct {
		Grade *float64 `json:"grade" validate:"required,score"`
	}

	AttendanceRequest struct {
		Attendance *float64 `json:"attendance" validate:"required,score"`
	}
)
