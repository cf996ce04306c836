package user

import (
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/registrar/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestParseType(t *testing.T) {
	tests := []struct {
		raw     string
		want    Type
		wantErr error
	}{
		{raw: "student", want: TypeStudent},
		{raw: " Teacher ", want: TypeTeacher},
		{raw: "ADMIN", want: TypeAdmin},
		{raw: "", wantErr: ErrInvalidType},
		{raw: "principal", wantErr: ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseType(tt.raw)
			if err != tt.wantErr {
				t.Errorf("ParseType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseType() = %v, want %v", got, tt.want)
			}
		})
	}

	assert.False(t, Type("Student").Valid())
	assert.True(t, TypeTeacher.Valid())
}

func TestNewUserValidation(t *testing.T) {
	validate, translator := newValidator()

	valid := NewUser{
		Name:            "Ada Lovelace",
		Username:        "12345",
		Password:        "Engine#42",
		PasswordConfirm: "Engine#42",
		Type:            "student",
	}

	tests := []struct {
		name    string
		mutate  func(nu *NewUser)
		wantErr map[string]string
	}{
		{name: "valid student", mutate: func(nu *NewUser) {}},
		{
			name:   "valid teacher",
			mutate: func(nu *NewUser) { nu.Username = "ada_l"; nu.Type = "teacher" },
		},
		{
			name:    "required fields",
			mutate:  func(nu *NewUser) { *nu = NewUser{Password: "Engine#42"} },
			wantErr: map[string]string{"name": "this field is required", "username": "this field is required", "password_confirm": "this field is required", "type": "this field is required"},
		},
		{
			name:    "unknown type",
			mutate:  func(nu *NewUser) { nu.Type = "janitor" },
			wantErr: map[string]string{"type": userTypeText},
		},
		{
			name:    "student username must be numeric",
			mutate:  func(nu *NewUser) { nu.Username = "ada" },
			wantErr: map[string]string{"username": studentIDText},
		},
		{
			name:    "username charset",
			mutate:  func(nu *NewUser) { nu.Username = "ada-l"; nu.Type = "teacher" },
			wantErr: map[string]string{"username": "only alphanumeric characters and underscores are allowed"},
		},
		{
			name:    "passwords mismatch",
			mutate:  func(nu *NewUser) { nu.PasswordConfirm = "Engine#43" },
			wantErr: map[string]string{"password_confirm": "password_confirm must be equal to Password"},
		},
		{
			name:    "password too short",
			mutate:  func(nu *NewUser) { nu.Password = "a1#"; nu.PasswordConfirm = "a1#" },
			wantErr: map[string]string{"password": pwdMinLenText},
		},
		{
			name:    "password with whitespace",
			mutate:  func(nu *NewUser) { nu.Password = "Engine 42"; nu.PasswordConfirm = "Engine 42" },
			wantErr: map[string]string{"password": pwdNoSpaceText},
		},
		{
			name:    "password over bcrypt limit",
			mutate:  func(nu *NewUser) { nu.Password = strings.Repeat("Engine#42", 9); nu.PasswordConfirm = nu.Password },
			wantErr: map[string]string{"password": pwdMaxLenText},
		},
		{
			name:    "password limit counts bytes",
			mutate:  func(nu *NewUser) { nu.Password = strings.Repeat("é", 40); nu.PasswordConfirm = nu.Password },
			wantErr: map[string]string{"password": pwdMaxLenText},
		},
		{
			name:   "password at bcrypt limit",
			mutate: func(nu *NewUser) { nu.Password = strings.Repeat("Engine#4", 9); nu.PasswordConfirm = nu.Password },
		},
		{
			name:    "username too long",
			mutate:  func(nu *NewUser) { nu.Username = strings.Repeat("b", 151); nu.Type = "teacher" },
			wantErr: map[string]string{"username": "username must be a maximum of 150 characters in length"},
		},
		{
			name:    "name too long",
			mutate:  func(nu *NewUser) { nu.Name = strings.Repeat("x", 256) },
			wantErr: map[string]string{"name": "name must be a maximum of 255 characters in length"},
		},
		{
			name:    "password similar to name",
			mutate:  func(nu *NewUser) { nu.Password = "adalovelace"; nu.PasswordConfirm = "adalovelace" },
			wantErr: map[string]string{"password": pwdAttrSimText},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid
			tt.mutate(&nu)

			err := validate.Struct(nu)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validate.Struct() error = %v, want nil", err)
				}
				return
			}

			verrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("validate.Struct() error = %v, want validator.ValidationErrors", err)
			}
			got := make(map[string]string)
			for _, fe := range verrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestTooSimilar(t *testing.T) {
	tests := []struct {
		pwd, attr string
		want      bool
	}{
		{pwd: "johnsmith", attr: "John Smith", want: true},
		{pwd: "hero123", attr: "hero", want: true},
		{pwd: "Engine#42", attr: "ada", want: false},
		{pwd: "anything", attr: "", want: false},
	}
	for _, tt := range tests {
		if got := tooSimilar(tt.pwd, tt.attr); got != tt.want {
			t.Errorf("tooSimilar(%q, %q) = %v, want %v", tt.pwd, tt.attr, got, tt.want)
		}
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Engine#42")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	assert.NotEqual(t, "Engine#42", string(hash))

	usr := User{PasswordHash: hash}
	assert.NoError(t, usr.CheckPassword("Engine#42"))
	assert.Error(t, usr.CheckPassword("engine#42"))

	_, err = HashPassword(strings.Repeat("a", pwdMaxLen+1))
	if err != ErrPasswordTooLong {
		t.Errorf("HashPassword() error = %v, wantErr %v", err, ErrPasswordTooLong)
	}
}
