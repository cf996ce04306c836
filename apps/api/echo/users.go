package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/user"
)

var errAdminSelfRegistration = echo.NewHTTPError(http.StatusForbidden, "administrators cannot self-register")

type authApi struct {
	conf     *core.Config
	svc      user.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{
		conf:     deps.Conf,
		svc:      deps.UserSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.GET("/username-exists", api.usernameExists)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
	ag.GET("/me", api.me, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.conf, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims, api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		SessionID: claims.Id,
		User:      claims.User(),
	})
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		return err
	}
	if data.Type == user.TypeAdmin.String() {
		return errAdminSelfRegistration
	}

	usr, err := api.svc.Register(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) usernameExists(ctx echo.Context) error {
	uname := core.CleanString(ctx.QueryParam("username"), true /* lower */)
	if uname == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "username", Error: "this field is required"})
	}
	exists, err := api.svc.UsernameExists(ctx.Request().Context(), uname)
	if err != nil {
		return errors.Wrap(err, "checking username")
	}
	return ctx.JSON(http.StatusOK, UsernameExistsResponse{Username: uname, Exists: exists})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	claims, _ := getContextClaims(ctx)
	usr, _ := ctx.Get(contextUserKey).(user.User)
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, SessionID: claims.Id, User: usr})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token     string    `json:"token"`
		SessionID string    `json:"session_id"`
		User      user.User `json:"user"`
	}

	UsernameExistsResponse struct {
		Username string `json:"username"`
		Exists   bool   `json:"exists"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
