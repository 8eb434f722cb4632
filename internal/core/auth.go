package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edvin/swiftwheelz/internal/backend"
	"github.com/edvin/swiftwheelz/internal/model"
)

const (
	tokenIssuer     = "swiftwheelz-web"
	sessionAudience = "session"
	quoteAudience   = "quote"
	flashAudience   = "flash"
	flashTTL        = time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Authenticator verifies credentials against the rental backend.
type Authenticator interface {
	LoginCustomer(ctx context.Context, email, password string) (*model.Customer, error)
	LoginEmployee(ctx context.Context, email, password string) (*model.Employee, error)
}

// AuthService signs customers and employees in and issues the signed tokens
// that carry session identity and quotes between requests.
type AuthService struct {
	backend    Authenticator
	secret     []byte
	sessionTTL time.Duration
	quoteTTL   time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(backend Authenticator, secret string, sessionTTL, quoteTTL time.Duration) *AuthService {
	return &AuthService{
		backend:    backend,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		quoteTTL:   quoteTTL,
		now:        time.Now,
	}
}

// SessionTTL is the lifetime of issued session tokens.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// SignInCustomer authenticates a customer through the backend.
func (s *AuthService) SignInCustomer(ctx context.Context, email, password string) (model.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Identity{}, ErrInvalidCredentials
	}
	c, err := s.backend.LoginCustomer(ctx, email, password)
	if err != nil {
		return model.Identity{}, mapLoginError("customer", err)
	}
	if c.CustomerID == 0 {
		return model.Identity{}, ErrInvalidCredentials
	}
	return model.CustomerIdentity(*c), nil
}

// SignInEmployee authenticates an employee through the backend.
func (s *AuthService) SignInEmployee(ctx context.Context, email, password string) (model.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Identity{}, ErrInvalidCredentials
	}
	e, err := s.backend.LoginEmployee(ctx, email, password)
	if err != nil {
		return model.Identity{}, mapLoginError("employee", err)
	}
	if e.EmployeeNumber == 0 {
		return model.Identity{}, ErrInvalidCredentials
	}
	return model.EmployeeIdentity(*e), nil
}

func mapLoginError(kind string, err error) error {
	if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrNotFound) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("%s login: %w", kind, err)
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Identity model.Identity `json:"identity"`
}

type quoteClaims struct {
	jwt.RegisteredClaims
	Quote model.PendingPayment `json:"quote"`
}

type flashClaims struct {
	jwt.RegisteredClaims
	Message string `json:"msg"`
}

func (s *AuthService) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) parse(token, audience string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}

// IssueSession signs the identity into a session token.
func (s *AuthService) IssueSession(id model.Identity) (string, error) {
	if id.ID == 0 || id.Kind == "" {
		return "", errors.New("issue session: identity is incomplete")
	}
	return s.sign(sessionClaims{
		RegisteredClaims: s.registered(string(id.Kind)+":"+strconv.Itoa(id.ID), sessionAudience, s.sessionTTL),
		Identity:         id,
	})
}

// ParseSession verifies a session token and returns its identity.
func (s *AuthService) ParseSession(token string) (model.Identity, error) {
	var claims sessionClaims
	if err := s.parse(token, sessionAudience, &claims); err != nil {
		return model.Identity{}, err
	}
	if claims.Identity.ID == 0 {
		return model.Identity{}, ErrInvalidToken
	}
	return claims.Identity, nil
}

// IssueQuote signs a computed quote so it can travel through the browser to
// the confirm-details page unchanged. Each token gets a fresh quote ID.
func (s *AuthService) IssueQuote(p model.PendingPayment) (string, error) {
	claims := quoteClaims{
		RegisteredClaims: s.registered(p.Truck.VIN, quoteAudience, s.quoteTTL),
		Quote:            p,
	}
	claims.ID = uuid.NewString()
	claims.Quote.QuoteID = ""
	return s.sign(claims)
}

// ParseQuote verifies a quote token and returns the quote it carries, with
// QuoteID set to the token's ID.
func (s *AuthService) ParseQuote(token string) (model.PendingPayment, error) {
	var claims quoteClaims
	if err := s.parse(token, quoteAudience, &claims); err != nil {
		return model.PendingPayment{}, err
	}
	if claims.ID == "" {
		return model.PendingPayment{}, ErrInvalidToken
	}
	claims.Quote.QuoteID = claims.ID
	return claims.Quote, nil
}

// IssueFlash signs a one-shot page message. kind is carried as the subject.
func (s *AuthService) IssueFlash(kind, message string) (string, error) {
	return s.sign(flashClaims{
		RegisteredClaims: s.registered(kind, flashAudience, flashTTL),
		Message:          message,
	})
}

// ParseFlash verifies a flash token and returns its kind and message.
func (s *AuthService) ParseFlash(token string) (string, string, error) {
	var claims flashClaims
	if err := s.parse(token, flashAudience, &claims); err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Message, nil
}
