package admin

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/registrar/core"
)

// NewStudent is the admin quick-add form for students. MaxUnits defaults to user.DefaultMaxUnits.
type NewStudent struct {
	Username string   `json:"username" validate:"required,max=150,numeric"`
	Password string   `json:"password" validate:"required,pwdmaxlen"`
	Name     string   `json:"name" validate:"required,max=255"`
	MaxUnits *float64 `json:"max_units" validate:"omitempty,gte=0"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Username = core.CleanString(ns.Username)
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// NewTeacher is the admin quick-add form for teachers.
type NewTeacher struct {
	Username      string `json:"username" validate:"required,max=150,alphanum_"`
	Password      string `json:"password" validate:"required,pwdmaxlen"`
	Name          string `json:"name" validate:"required,max=255"`
	MaxCourses    *int   `json:"max_courses" validate:"omitempty,gte=0"`
	CoursesTaught *int   `json:"courses_taught" validate:"omitempty,gte=0"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}
