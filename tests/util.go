package testutil

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/admin"
	"github.com/trezcool/registrar/core/course"
	"github.com/trezcool/registrar/core/student"
	"github.com/trezcool/registrar/core/teacher"
	"github.com/trezcool/registrar/core/user"
	logsvc "github.com/trezcool/registrar/services/logger"
	inmemdb "github.com/trezcool/registrar/storage/database/inmem"
)

// Services bundles every data-access service over one in-memory store.
type Services struct {
	DB         *inmemdb.DB
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	UserSvc    user.Service
	AdminSvc   admin.Service
	StudentSvc student.Service
	TeacherSvc teacher.Service
}

func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func NewServices() *Services {
	db := inmemdb.Open()
	logger := logsvc.NewDiscardLogger()
	validate, translator := NewValidator()

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), logger)
	return &Services{
		DB:         db,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    usrSvc,
		AdminSvc:   admin.NewService(inmemdb.NewAdminRepository(db), usrSvc, validate, logger),
		StudentSvc: student.NewService(inmemdb.NewStudentRepository(db), logger),
		TeacherSvc: teacher.NewService(inmemdb.NewTeacherRepository(db), logger),
	}
}

func CreateUser(t *testing.T, svc user.Service, typ user.Type, uname, name, pwd string) user.User {
	t.Helper()
	usr, err := svc.CreateUser(context.Background(), uname, pwd, typ, name)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, svc admin.Service, crn int, name string, credits float64, capacity int) course.Course {
	t.Helper()
	crs, err := svc.AddCourse(context.Background(), course.NewCourse{
		CRN:      crn,
		Name:     name,
		Credits:  credits,
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func Assign(t *testing.T, svc admin.Service, teacherID, crn int) {
	t.Helper()
	if err := svc.AssignCourseToTeacher(context.Background(), teacherID, crn); err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
}

func Enroll(t *testing.T, svc student.Service, studentID, crn int) {
	t.Helper()
	if err := svc.EnrollInCourse(context.Background(), studentID, crn); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}
