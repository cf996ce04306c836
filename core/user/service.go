package user

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/registrar/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user not found")
	ErrStudentNotFound    = core.NewNotFoundError("student not found")
	ErrTeacherNotFound    = core.NewNotFoundError("teacher not found")
	ErrUsernameExists     = core.NewConflictError("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidType        = core.NewValidationError(
		errors.New(userTypeText),
		core.FieldError{Field: "type", Error: userTypeText},
	)
	ErrPasswordTooLong = core.NewValidationError(
		errors.New(pwdMaxLenText),
		core.FieldError{Field: "password", Error: pwdMaxLenText},
	)
	ErrUsernameTooLong = core.NewValidationError(
		errors.New("username is too long"),
		core.FieldError{Field: "username", Error: fmt.Sprintf("username must be a maximum of %d characters in length", UsernameMaxLen)},
	)
	ErrNameTooLong = core.NewValidationError(
		errors.New("name is too long"),
		core.FieldError{Field: "name", Error: fmt.Sprintf("name must be a maximum of %d characters in length", NameMaxLen)},
	)
)

type (
	Repository interface {
		UsernameExists(ctx context.Context, username string) (bool, error)
		// CreateUser inserts the account and its role row atomically.
		CreateUser(ctx context.Context, usr User, prof Profile) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		// GetUserByUsername returns the account joined to the role table selected by its type.
		GetUserByUsername(ctx context.Context, username string) (User, error)
		UpdatePassword(ctx context.Context, id int, hash []byte) error
	}

	Service interface {
		UsernameExists(ctx context.Context, username string) (bool, error)
		Authenticate(ctx context.Context, username, password string) (User, error)
		CreateUser(ctx context.Context, username, password string, typ Type, name string) (User, error)
		CreateAccount(ctx context.Context, na NewAccount) (User, error)
		Register(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		ResetPassword(ctx context.Context, username, password string) error
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func checkUniqueness(ctx context.Context, svc Service, uname string) error {
	exists, err := svc.UsernameExists(ctx, uname)
	if err != nil {
		return err
	}
	if exists {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return nil
}

// checkLengths keeps forms that bypass validation (CLI, quick-add) within the column limits.
func checkLengths(usr User) error {
	switch {
	case utf8.RuneCountInString(usr.Username) > UsernameMaxLen:
		return ErrUsernameTooLong
	case utf8.RuneCountInString(usr.Name) > NameMaxLen:
		return ErrNameTooLong
	}
	return nil
}

func (svc *service) UsernameExists(ctx context.Context, username string) (bool, error) {
	exists, err := svc.repo.UsernameExists(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		core.LogFailure(svc.logger, "checking username", err)
		return false, err
	}
	return exists, nil
}

// Authenticate returns the user matching the credentials.
// An unknown username and a wrong password both fail with ErrInvalidCredentials.
func (svc *service) Authenticate(ctx context.Context, username, password string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		if pkgerrors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		core.LogFailure(svc.logger, "authenticating", err)
		return User{}, pkgerrors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) CreateUser(ctx context.Context, username, password string, typ Type, name string) (User, error) {
	return svc.CreateAccount(ctx, NewAccount{
		Username: username,
		Password: password,
		Name:     name,
		Type:     typ,
		Profile:  DefaultProfile(),
	})
}

// CreateAccount rejects an unknown Type before touching the store, then hashes the password
// and writes the account and its role row in one transaction.
func (svc *service) CreateAccount(ctx context.Context, na NewAccount) (User, error) {
	if !na.Type.Valid() {
		core.LogFailure(svc.logger, "creating user", ErrInvalidType)
		return User{}, ErrInvalidType
	}

	usr := User{
		Name:     core.CleanString(na.Name),
		Username: core.CleanString(na.Username, true /* lower */),
		Type:     na.Type,
	}
	if err := checkLengths(usr); err != nil {
		core.LogFailure(svc.logger, "creating user", err)
		return User{}, err
	}
	if err := usr.SetPassword(na.Password); err != nil {
		core.LogFailure(svc.logger, "creating user", err)
		return User{}, err
	}

	created, err := svc.repo.CreateUser(ctx, usr, na.Profile)
	if err != nil {
		core.LogFailure(svc.logger, fmt.Sprintf("creating %s %q", na.Type, usr.Username), err)
		return User{}, err
	}
	svc.logger.Info(fmt.Sprintf("created %s %q", created.Type, created.Username))
	return created, nil
}

// Register creates an account from a validated registration form.
func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	typ, err := ParseType(nu.Type)
	if err != nil {
		return User{}, err
	}
	return svc.CreateUser(ctx, nu.Username, nu.Password, typ, nu.Name)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) ResetPassword(ctx context.Context, username, password string) error {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(password); err != nil {
		return err
	}
	if err = svc.repo.UpdatePassword(ctx, usr.ID, usr.PasswordHash); err != nil {
		core.LogFailure(svc.logger, "resetting password", err)
		return err
	}
	return nil
}
