package admin_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/registrar/core/admin"
	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/user"
	"github.com/trezcool/registrar/tests"
)

func TestService_AddCourse(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	crs, err := svcs.AdminSvc.AddCourse(ctx, course.NewCourse{CRN: 101, Name: " Algorithms ", Credits: 3, Capacity: 30})
	require.NoError(t, err)
	assert.Equal(t, course.Course{CRN: 101, Name: "Algorithms", Credits: 3, Capacity: 30}, crs)

	tests := []struct {
		name    string
		nc      course.NewCourse
		wantErr error
	}{
		{name: "duplicate crn", nc: course.NewCourse{CRN: 101, Name: "Other", Credits: 1, Capacity: 1}, wantErr: course.ErrExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svcs.AdminSvc.AddCourse(ctx, tt.nc); errors.Cause(err) != tt.wantErr {
				t.Errorf("AddCourse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	invalid := []course.NewCourse{
		{CRN: 0, Name: "No CRN", Credits: 1, Capacity: 1},
		{CRN: 102, Name: "  ", Credits: 1, Capacity: 1},
		{CRN: 103, Name: "Negative", Credits: -1, Capacity: 1},
		{CRN: 104, Name: "No seats", Credits: 1, Capacity: 0},
		{CRN: 105, Name: strings.Repeat("A", 256), Credits: 1, Capacity: 1},
	}
	for _, nc := range invalid {
		_, err := svcs.AdminSvc.AddCourse(ctx, nc)
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Errorf("AddCourse(%+v) error = %v, want validator.ValidationErrors", nc, err)
		}
	}

	courses, err := svcs.AdminSvc.GetAllCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Summary{{Course: crs, Instructor: course.NotAssigned}}, courses)
}

func TestService_Listings(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	for _, list := range []func() (interface{}, error){
		func() (interface{}, error) { return svcs.AdminSvc.GetAllStudents(ctx) },
		func() (interface{}, error) { return svcs.AdminSvc.GetAllTeachers(ctx) },
		func() (interface{}, error) { return svcs.AdminSvc.GetAllCourses(ctx) },
		func() (interface{}, error) { return svcs.AdminSvc.GetAllCourseAssignments(ctx) },
	} {
		got, err := list()
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}

	bob := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2002", "Bob", "Secret#1")
	ann := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	zed := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "zed", "Zed", "Secret#1")
	amy := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")
	testutil.CreateUser(t, svcs.UserSvc, user.TypeAdmin, "root", "Root", "Secret#1")

	testutil.CreateCourse(t, svcs.AdminSvc, 20, "Databases", 3, 10)
	testutil.CreateCourse(t, svcs.AdminSvc, 10, "Compilers", 4, 10)
	testutil.Assign(t, svcs.AdminSvc, zed.ID, 20)
	testutil.Assign(t, svcs.AdminSvc, amy.ID, 20)
	testutil.Assign(t, svcs.AdminSvc, zed.ID, 10)
	testutil.Enroll(t, svcs.StudentSvc, ann.ID, 10)
	testutil.Enroll(t, svcs.StudentSvc, ann.ID, 20)

	students, err := svcs.AdminSvc.GetAllStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []admin.StudentSummary{
		{ID: ann.ID, Name: "Ann", Username: "2001", EnrolledCourses: 2},
		{ID: bob.ID, Name: "Bob", Username: "2002", EnrolledCourses: 0},
	}, students)

	teachers, err := svcs.AdminSvc.GetAllTeachers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []admin.TeacherSummary{
		{ID: amy.ID, Name: "Amy", Username: "amy", CoursesTeaching: 1},
		{ID: zed.ID, Name: "Zed", Username: "zed", CoursesTeaching: 2},
	}, teachers)

	courses, err := svcs.AdminSvc.GetAllCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Compilers", courses[0].Name)
	assert.Equal(t, "Zed", courses[0].Instructor)
	assert.Equal(t, 1, courses[0].NumStudents)
	assert.Equal(t, "Amy, Zed", courses[1].Instructor)

	assignments, err := svcs.AdminSvc.GetAllCourseAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []admin.Assignment{
		{TeacherID: amy.ID, TeacherName: "Amy", CourseName: "Databases", CRN: 20, CourseOrder: 1},
		{TeacherID: zed.ID, TeacherName: "Zed", CourseName: "Databases", CRN: 20, CourseOrder: 1},
		{TeacherID: zed.ID, TeacherName: "Zed", CourseName: "Compilers", CRN: 10, CourseOrder: 2},
	}, assignments)
}

func TestService_AssignCourseToTeacher(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	tchr := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")
	stud := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	testutil.CreateCourse(t, svcs.AdminSvc, 10, "Compilers", 4, 10)
	testutil.CreateCourse(t, svcs.AdminSvc, 20, "Databases", 3, 10)

	tests := []struct {
		name      string
		teacherID int
		crn       int
		wantErr   error
	}{
		{name: "first", teacherID: tchr.ID, crn: 10},
		{name: "duplicate", teacherID: tchr.ID, crn: 10, wantErr: admin.ErrAlreadyAssigned},
		{name: "not a teacher", teacherID: stud.ID, crn: 10, wantErr: user.ErrTeacherNotFound},
		{name: "unknown teacher", teacherID: 999, crn: 10, wantErr: user.ErrTeacherNotFound},
		{name: "unknown course", teacherID: tchr.ID, crn: 99, wantErr: course.ErrNotFound},
		{name: "second", teacherID: tchr.ID, crn: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svcs.AdminSvc.AssignCourseToTeacher(ctx, tt.teacherID, tt.crn)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("AssignCourseToTeacher() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	courses, err := svcs.TeacherSvc.GetTeacherCourses(ctx, tchr.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, 10, courses[0].CRN)
	assert.Equal(t, 20, courses[1].CRN)

	require.NoError(t, svcs.AdminSvc.UnassignCourseFromTeacher(ctx, tchr.ID, 10))
	err = svcs.AdminSvc.UnassignCourseFromTeacher(ctx, tchr.ID, 10)
	assert.Equal(t, admin.ErrAssignmentNotFound, errors.Cause(err))

	// orders only grow past the highest one held
	require.NoError(t, svcs.AdminSvc.AssignCourseToTeacher(ctx, tchr.ID, 10))
	assignments, err := svcs.AdminSvc.GetAllCourseAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, []int{assignments[0].CourseOrder, assignments[1].CourseOrder})
}

func TestService_RemoveCourse(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	tchr := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")
	ann := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	bob := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2002", "Bob", "Secret#1")
	testutil.CreateCourse(t, svcs.AdminSvc, 10, "Compilers", 4, 10)
	testutil.CreateCourse(t, svcs.AdminSvc, 20, "Databases", 3, 10)
	testutil.Assign(t, svcs.AdminSvc, tchr.ID, 10)
	testutil.Enroll(t, svcs.StudentSvc, ann.ID, 10)
	testutil.Enroll(t, svcs.StudentSvc, bob.ID, 10)
	require.NoError(t, svcs.TeacherSvc.UpdateStudentGrade(ctx, ann.ID, 10, 90))
	require.NoError(t, svcs.TeacherSvc.CompleteCourseForStudent(ctx, bob.ID, 10))

	require.NoError(t, svcs.AdminSvc.RemoveCourse(ctx, 10))
	assert.Equal(t, course.ErrNotFound, errors.Cause(svcs.AdminSvc.RemoveCourse(ctx, 10)))

	courses, err := svcs.AdminSvc.GetAllCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 20, courses[0].CRN)

	taught, err := svcs.TeacherSvc.GetTeacherCourses(ctx, tchr.ID)
	require.NoError(t, err)
	assert.Empty(t, taught)

	current, err := svcs.StudentSvc.GetCurrentCourses(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, current)

	completed, err := svcs.StudentSvc.GetCompletedCourses(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, completed)

	// the course may be recreated from scratch
	crs := testutil.CreateCourse(t, svcs.AdminSvc, 10, "Compilers", 4, 10)
	assert.Equal(t, 0, crs.NumStudents)
	testutil.Enroll(t, svcs.StudentSvc, bob.ID, 10)
}

func TestService_RemoveUser(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	root := testutil.CreateUser(t, svcs.UserSvc, user.TypeAdmin, "root", "Root", "Secret#1")
	tchr := testutil.CreateUser(t, svcs.UserSvc, user.TypeTeacher, "amy", "Amy", "Secret#1")
	ann := testutil.CreateUser(t, svcs.UserSvc, user.TypeStudent, "2001", "Ann", "Secret#1")
	testutil.CreateCourse(t, svcs.AdminSvc, 10, "Compilers", 4, 10)
	testutil.CreateCourse(t, svcs.AdminSvc, 20, "Databases", 3, 10)
	testutil.Assign(t, svcs.AdminSvc, tchr.ID, 10)
	testutil.Enroll(t, svcs.StudentSvc, ann.ID, 10)
	testutil.Enroll(t, svcs.StudentSvc, ann.ID, 20)
	require.NoError(t, svcs.TeacherSvc.UpdateStudentGrade(ctx, ann.ID, 10, 80))
	require.NoError(t, svcs.TeacherSvc.CompleteCourseForStudent(ctx, ann.ID, 20))

	tests := []struct {
		name    string
		id      int
		wantErr error
	}{
		{name: "admin refused", id: root.ID, wantErr: admin.ErrAdminNotRemovable},
		{name: "unknown id", id: 999, wantErr: user.ErrNotFound},
		{name: "student", id: ann.ID},
		{name: "teacher", id: tchr.ID},
		{name: "already removed", id: ann.ID, wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svcs.AdminSvc.RemoveUser(ctx, tt.id); errors.Cause(err) != tt.wantErr {
				t.Errorf("RemoveUser() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	_, err := svcs.UserSvc.GetByID(ctx, root.ID)
	assert.NoError(t, err)

	courses, err := svcs.AdminSvc.GetAllCourses(ctx)
	require.NoError(t, err)
	for _, crs := range courses {
		assert.Equal(t, 0, crs.NumStudents, "seat of removed student freed in %d", crs.CRN)
		assert.Equal(t, course.NotAssigned, crs.Instructor)
	}

	roster, err := svcs.TeacherSvc.GetCourseStudents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, roster)

	exists, err := svcs.UserSvc.UsernameExists(ctx, "2001")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_AddStudentAndTeacher(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	units := 12.5
	stud, err := svcs.AdminSvc.AddStudent(ctx, admin.NewStudent{Username: " 3001 ", Password: "pw", Name: "Cy", MaxUnits: &units})
	require.NoError(t, err)
	assert.Equal(t, "3001", stud.Username)
	assert.True(t, stud.IsStudent())

	_, err = svcs.AdminSvc.AddStudent(ctx, admin.NewStudent{Username: "cy", Password: "pw", Name: "Cy"})
	if _, ok := err.(validator.ValidationErrors); !ok {
		t.Errorf("AddStudent(non numeric) error = %v, want validator.ValidationErrors", err)
	}

	tchr, err := svcs.AdminSvc.AddTeacher(ctx, admin.NewTeacher{Username: "Dee", Password: "pw", Name: "Dee"})
	require.NoError(t, err)
	assert.Equal(t, "dee", tchr.Username)
	assert.True(t, tchr.IsTeacher())

	_, err = svcs.AdminSvc.AddTeacher(ctx, admin.NewTeacher{Username: "dee", Password: "pw", Name: "Dee 2"})
	assert.Equal(t, user.ErrUsernameExists, errors.Cause(err))

	long := strings.Repeat("pw", 37)
	oversized := []interface{}{
		admin.NewStudent{Username: "3002", Password: long, Name: "Cy"},
		admin.NewStudent{Username: strings.Repeat("3", 151), Password: "pw", Name: "Cy"},
		admin.NewTeacher{Username: "eve", Password: long, Name: "Eve"},
		admin.NewTeacher{Username: "eve", Password: "pw", Name: strings.Repeat("E", 256)},
	}
	for _, form := range oversized {
		switch f := form.(type) {
		case admin.NewStudent:
			_, err = svcs.AdminSvc.AddStudent(ctx, f)
		case admin.NewTeacher:
			_, err = svcs.AdminSvc.AddTeacher(ctx, f)
		}
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Errorf("quick-add(%T) error = %v, want validator.ValidationErrors", form, err)
		}
	}

	// passwords are stored hashed
	_, err = svcs.UserSvc.Authenticate(ctx, "3001", "pw")
	assert.NoError(t, err)
}
