package tests

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/registrar/apps/api/echo"
	"github.com/trezcool/registrar/core/admin"
	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/user"
	"github.com/trezcool/registrar/tests"
)

func Test_adminApi_users(t *testing.T) {
	app, svcs := setup(t)

	root := testutil.CreateUser(t, svcs.UserSvc, user.TypeAdmin, "root", "Root", "Secret#1")
	ann := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	amy := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")
	token := getToken(t, root)

	userPath := func(id int) string { return "/v1/admin/users/" + strconv.Itoa(id) }

	tests := []httpTest{
		{
			name: "list students", method: http.MethodGet, path: "/v1/admin/students", token: token,
			wantData: marshalList(t, admin.StudentSummary{ID: ann.ID, Name: "Ann", Username: "2001"}),
		},
		{
			name: "list teachers", method: http.MethodGet, path: "/v1/admin/teachers", token: token,
			wantData: marshalList(t, admin.TeacherSummary{ID: amy.ID, Name: "Amy", Username: "amy"}),
		},
		{
			name: "add student: numeric username", method: http.MethodPost, path: "/v1/admin/students", token: token,
			body:     marshalObj(t, admin.NewStudent{Username: "bob", Password: "pw", Name: "Bob"}),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"username": "username must be a valid numeric value"}),
		},
		{
			name: "add teacher: username taken", method: http.MethodPost, path: "/v1/admin/teachers", token: token,
			body:     marshalObj(t, admin.NewTeacher{Username: "AMY", Password: "pw", Name: "Amy Two"}),
			wantCode: http.StatusConflict, wantData: marshalObj(t, httpErr{Error: user.ErrUsernameExists.Error()}),
		},
		{
			name: "remove admin", method: http.MethodDelete, path: userPath(root.ID), token: token,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: admin.ErrAdminNotRemovable.Error()}),
		},
		{
			name: "remove unknown", method: http.MethodDelete, path: userPath(999), token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: user.ErrNotFound.Error()}),
		},
		{
			name: "remove invalid id", method: http.MethodDelete, path: "/v1/admin/users/abc", token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound),
		},
		{name: "remove student", method: http.MethodDelete, path: userPath(ann.ID), token: token, wantCode: http.StatusNoContent},
		{name: "students emptied", method: http.MethodGet, path: "/v1/admin/students", token: token, wantData: marshalList(t)},
	}
	runHTTPTests(t, app, tests)

	t.Run("add student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/students", token, marshalObj(t, admin.NewStudent{Username: "2002", Password: "pw", Name: "Bob"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		bob, err := svcs.UserSvc.Authenticate(context.Background(), "2002", "pw")
		require.NoError(t, err)
		require.True(t, bob.IsStudent())
	})
}

func Test_adminApi_courses(t *testing.T) {
	app, svcs := setup(t)

	root := testutil.CreateUser(t, svcs.UserSvc, user.TypeAdmin, "root", "Root", "Secret#1")
	amy := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")
	token := getToken(t, root)

	compilers := course.Course{CRN: 10, Name: "Compilers", Credits: 4, Capacity: 30}

	tests := []httpTest{
		{name: "no courses", method: http.MethodGet, path: "/v1/admin/courses", token: token, wantData: marshalList(t)},
		{
			name: "add course", method: http.MethodPost, path: "/v1/admin/courses", token: token,
			body:     marshalObj(t, course.NewCourse{CRN: 10, Name: "Compilers", Credits: 4, Capacity: 30}),
			wantCode: http.StatusCreated, wantData: marshalObj(t, compilers),
		},
		{
			name: "add course: name required", method: http.MethodPost, path: "/v1/admin/courses", token: token,
			body:     marshalObj(t, course.NewCourse{CRN: 11, Credits: 4, Capacity: 30}),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"course_name": "this field is required"}),
		},
		{
			name: "add course: duplicate crn", method: http.MethodPost, path: "/v1/admin/courses", token: token,
			body:     marshalObj(t, course.NewCourse{CRN: 10, Name: "Other", Credits: 1, Capacity: 1}),
			wantCode: http.StatusConflict, wantData: marshalObj(t, httpErr{Error: course.ErrExists.Error()}),
		},
		{
			name: "assign", method: http.MethodPost, path: "/v1/admin/assignments", token: token,
			body:     marshalObj(t, echoapi.AssignmentRequest{TeacherID: amy.ID, CRN: 10}),
			wantCode: http.StatusCreated, wantData: marshalObj(t, echoapi.AssignmentRequest{TeacherID: amy.ID, CRN: 10}),
		},
		{
			name: "assign: duplicate", method: http.MethodPost, path: "/v1/admin/assignments", token: token,
			body:     marshalObj(t, echoapi.AssignmentRequest{TeacherID: amy.ID, CRN: 10}),
			wantCode: http.StatusConflict, wantData: marshalObj(t, httpErr{Error: admin.ErrAlreadyAssigned.Error()}),
		},
		{
			name: "assign: unknown course", method: http.MethodPost, path: "/v1/admin/assignments", token: token,
			body:     marshalObj(t, echoapi.AssignmentRequest{TeacherID: amy.ID, CRN: 99}),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
		{
			name: "list courses", method: http.MethodGet, path: "/v1/admin/courses", token: token,
			wantData: marshalList(t, course.Summary{Course: compilers, Instructor: "Amy"}),
		},
		{
			name: "list assignments", method: http.MethodGet, path: "/v1/admin/assignments", token: token,
			wantData: marshalList(t, admin.Assignment{TeacherID: amy.ID, TeacherName: "Amy", CourseName: "Compilers", CRN: 10, CourseOrder: 1}),
		},
		{
			name: "unassign", method: http.MethodDelete, path: "/v1/admin/assignments/" + strconv.Itoa(amy.ID) + "/10", token: token,
			wantCode: http.StatusNoContent,
		},
		{
			name: "unassign: missing", method: http.MethodDelete, path: "/v1/admin/assignments/" + strconv.Itoa(amy.ID) + "/10", token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: admin.ErrAssignmentNotFound.Error()}),
		},
		{name: "remove course", method: http.MethodDelete, path: "/v1/admin/courses/10", token: token, wantCode: http.StatusNoContent},
		{
			name: "remove course: missing", method: http.MethodDelete, path: "/v1/admin/courses/10", token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
	}
	runHTTPTests(t, app, tests)
}
