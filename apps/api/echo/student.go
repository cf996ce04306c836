package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/student"
)

type studentApi struct {
	svc student.Service
}

func registerStudentAPI(g *echo.Group, deps ServerDeps) {
	api := studentApi{svc: deps.StudentSvc}

	g.GET("/courses/available", api.queryAvailable)
	g.GET("/courses/current", api.queryCurrent)
	g.GET("/courses/completed", api.queryCompleted)
	g.POST("/enrollments", api.enroll)
	g.DELETE("/enrollments/:crn", api.drop)
}

// Handlers

func (api *studentApi) queryAvailable(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.GetAvailableCourses(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying available courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentApi) queryCurrent(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.GetCurrentCourses(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying current courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentApi) queryCompleted(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.GetCompletedCourses(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying completed courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentApi) enroll(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	var data EnrollmentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err = api.svc.EnrollInCourse(ctx.Request().Context(), id, data.CRN); err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "Successfully enrolled in course."})
}

func (api *studentApi) drop(ctx echo.Context) error {
	id, err := getContextUserID(ctx)
	if err != nil {
		return err
	}
	crn, err := intParam(ctx, "crn")
	if err != nil {
		return err
	}
	if err = api.svc.DropCourse(ctx.Request().Context(), id, crn); err != nil {
		return errors.Wrap(err, "dropping course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type EnrollmentRequest struct {
	CRN int `json:"crn"`
}
