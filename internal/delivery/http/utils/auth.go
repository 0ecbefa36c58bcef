package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Auth interface {
	CheckAuth(tokenString string) (string, error)
	CheckAuthFromContext(c echo.Context) (string, error)
	CreateToken(subject string) (string, error)
}

var ErrUnauthorized = errors.New("unauthorized")

const (
	SessionCookie = "session"
	bearerPrefix  = "Bearer "
)

type AuthManager struct {
	jwtSecretKey  []byte
	tokenLifetime time.Duration
}

func NewAuthManager(jwtSecretKey []byte, tokenLifetime time.Duration) *AuthManager {
	return &AuthManager{
		jwtSecretKey:  jwtSecretKey,
		tokenLifetime: tokenLifetime,
	}
}

// CheckAuth проверяет токен администратора и возвращает его subject.
// Если токен невалиден или просрочен, возвращается ErrUnauthorized.
func (a *AuthManager) CheckAuth(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}

// CheckAuthFromContext ищет токен в куке session, затем в заголовке Authorization
func (a *AuthManager) CheckAuthFromContext(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return a.CheckAuth(cookie.Value)
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, bearerPrefix); ok && token != "" {
		return a.CheckAuth(token)
	}
	return "", ErrUnauthorized
}

// CreateToken создает токен администратора
func (a *AuthManager) CreateToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecretKey)
}

// Middleware пропускает только запросы с валидным токеном администратора
func Middleware(auth Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, err := auth.CheckAuthFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Unauthorized",
				})
			}
			c.Set("admin", subject)
			return next(c)
		}
	}
}
