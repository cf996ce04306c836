package course

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/registrar/core"
)

// NotAssigned is the instructor shown for a course nobody teaches.
const NotAssigned = "Not Assigned"

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("course not found")
	ErrExists           = core.NewConflictError("a course with this CRN already exists")
	ErrFull             = core.NewConflictError("course is full")
	ErrAlreadyEnrolled  = core.NewConflictError("student is already enrolled in this course")
	ErrAlreadyCompleted = core.NewConflictError("student has already completed this course")
	ErrNotEnrolled      = core.NewNotFoundError("student is not enrolled in this course")
	ErrScoreOutOfRange  = core.NewValidationError(
		errScoreOutOfRange,
		core.FieldError{Field: "score", Error: errScoreOutOfRange.Error()},
	)
)

type Course struct {
	CRN         int     `json:"crn" db:"crn"`
	Name        string  `json:"course_name" db:"course_name"`
	Credits     float64 `json:"credits" db:"credits"`
	Capacity    int     `json:"capacity" db:"course_size"`
	NumStudents int     `json:"num_students" db:"num_students"`
}

// IsFull reports whether no seat is left.
func (c Course) IsFull() bool {
	return c.NumStudents >= c.Capacity
}

// Summary is a course with its instructor names, or NotAssigned.
type Summary struct {
	Course
	Instructor string `json:"instructor" db:"instructor"`
}

// Enrollment is a course a student currently takes, with the grade and attendance recorded so far.
type Enrollment struct {
	Summary
	EnrollmentOrder int          `json:"enrollment_order" db:"enrollment_order"`
	Grade           null.Float64 `json:"grade" db:"grade"`
	Attendance      null.Float64 `json:"attendance" db:"attendance"`
}

// Completion is the archived record of a finished course.
type Completion struct {
	CRN        int     `json:"crn" db:"crn"`
	Name       string  `json:"course_name" db:"course_name"`
	Credits    float64 `json:"credits" db:"credits"`
	Grade      float64 `json:"grade" db:"grade"`
	Attendance float64 `json:"attendance" db:"attendance"`
}

// StudentRecord is one row of a course roster.
type StudentRecord struct {
	StudentID       int          `json:"student_id" db:"student_id"`
	Name            string       `json:"name" db:"name"`
	Username        string       `json:"username" db:"username"`
	EnrollmentOrder int          `json:"enrollment_order" db:"enrollment_order"`
	Grade           null.Float64 `json:"grade" db:"grade"`
	Attendance      null.Float64 `json:"attendance" db:"attendance"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	CRN      int     `json:"crn" validate:"gt=0"`
	Name     string  `json:"course_name" validate:"required,max=255"`
	Credits  float64 `json:"credits" validate:"gte=0"`
	Capacity int     `json:"capacity" validate:"gt=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// Course returns the empty course described by nc.
func (nc NewCourse) Course() Course {
	return Course{
		CRN:      nc.CRN,
		Name:     nc.Name,
		Credits:  nc.Credits,
		Capacity: nc.Capacity,
	}
}

// CheckScore validates a grade or attendance value.
func CheckScore(v float64) error {
	if !core.ValidScore(v) {
		return ErrScoreOutOfRange
	}
	return nil
}
