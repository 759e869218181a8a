package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role values carried in the "role" claim. Tokens are issued by the identity
// service; this package only verifies them.
const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
)

var ErrInvalidClaims = errors.New("token is missing required claims")

// Actor identifies the authenticated caller of a request.
type Actor struct {
	EmployeeID string
	Role       string
}

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	ActorFromClaims(claims map[string]interface{}) (Actor, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// ActorFromClaims extracts the caller identity from a verified token's claim
// map, as returned by jwtauth.FromContext.
func (j *JWTService) ActorFromClaims(claims map[string]interface{}) (Actor, error) {
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return Actor{}, ErrInvalidClaims
	}

	role, ok := claims["role"].(string)
	if !ok {
		role = RoleEmployee
	}

	return Actor{EmployeeID: employeeID, Role: role}, nil
}
