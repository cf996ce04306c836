package echoapi

import (
	"context"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core"
	"github.com/trezcool/registrar/core/user"
)

const (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
	jwtAudience     = "Registrar"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// Id holds the login session ID; it survives token refreshes.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	UserID       int       `json:"uid"`
	Username     string    `json:"username,omitempty"`
	Name         string    `json:"name,omitempty"`
	Type         user.Type `json:"type"` // -> STUDENT | TEACHER | ADMIN dashboard
}

func (c Claims) User() user.User {
	return user.User{ID: c.UserID, Username: c.Username, Name: c.Name, Type: c.Type}
}

// GetUserClaims builds the claims of a new session for usr,
// or of a refreshed one when the session ID and original issue time are given.
func GetUserClaims(usr user.User, conf *core.Config, sessionID string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			Audience:  jwtAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		UserID:       usr.ID,
		Username:     usr.Username,
		Name:         usr.Name,
		Type:         usr.Type,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func authenticate(ctx context.Context, uname, pwd string, conf *core.Config, svc user.Service) (*Claims, error) {
	usr, err := svc.Authenticate(ctx, uname, pwd)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "authenticating")
	}
	return GetUserClaims(usr, conf, ""), nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUserID returns the ID of the authenticated user.
func getContextUserID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func getContextUser(ctx echo.Context, svc user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAccountRemoved
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, conf *core.Config, svc user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// the account may have been removed since login
	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(usr, conf, claims.Id, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims, conf.SecretKey)
	return token, errors.Wrap(err, "generating token")
}
