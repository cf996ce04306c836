package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/registrar/core"
)

// Type is the closed set of account kinds; every account carries exactly one.
type Type string

const (
	TypeStudent Type = "student"
	TypeTeacher Type = "teacher"
	TypeAdmin   Type = "admin"
)

// Column limits of the users and role tables.
const (
	UsernameMaxLen = 150
	NameMaxLen     = 255
)

// Role profile defaults.
const (
	DefaultMaxUnits      = 18.0
	DefaultMaxCourses    = 5
	DefaultCoursesTaught = 0
)

var Types = []Type{TypeStudent, TypeTeacher, TypeAdmin}

// ParseType maps a raw user type to a Type, or fails with ErrInvalidType.
func ParseType(s string) (Type, error) {
	switch t := Type(core.CleanString(s, true /* lower */)); t {
	case TypeStudent, TypeTeacher, TypeAdmin:
		return t, nil
	}
	return "", ErrInvalidType
}

func (t Type) Valid() bool {
	switch t {
	case TypeStudent, TypeTeacher, TypeAdmin:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

type User struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Username     string `json:"username" db:"username"`
	Type         Type   `json:"type" db:"user_type"`
	PasswordHash []byte `json:"-" db:"password_hash"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool   { return u.Type == TypeAdmin }
func (u User) IsTeacher() bool { return u.Type == TypeTeacher }
func (u User) IsStudent() bool { return u.Type == TypeStudent }

// HashPassword derives the one-way digest stored for a password.
func HashPassword(pwd string) ([]byte, error) {
	if len(pwd) > pwdMaxLen {
		return nil, ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return hash, nil
}

// Profile holds the role row values written next to a new account.
// Only the fields of the account's Type are used.
type Profile struct {
	MaxUnits      float64 `json:"max_units"`
	MaxCourses    int     `json:"max_courses"`
	CoursesTaught int     `json:"courses_taught"`
}

func DefaultProfile() Profile {
	return Profile{
		MaxUnits:      DefaultMaxUnits,
		MaxCourses:    DefaultMaxCourses,
		CoursesTaught: DefaultCoursesTaught,
	}
}

// NewAccount contains information needed to create an account with its role profile.
type NewAccount struct {
	Username string
	Password string
	Name     string
	Type     Type
	Profile  Profile
}

// NewUser is the self-registration form.
type NewUser struct {
	Name            string `json:"name" validate:"required,max=255"`
	Username        string `json:"username" validate:"required,max=150,alphanum_"`
	Password        string `json:"password" validate:"required,pwdmaxlen"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Type            string `json:"type" validate:"required,usertype"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Type = core.CleanString(nu.Type, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return checkUniqueness(ctx, svc, nu.Username)
}
