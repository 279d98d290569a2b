package application

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/grse/dashboard/internal/domain"
)

// Authenticator checks credentials against the backend
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
}

// SessionGate holds authenticated identities and their permitted pages
type SessionGate struct {
	auth   Authenticator
	repo   domain.SessionRepository
	secret []byte
	issuer string
	ttl    time.Duration
}

// IssuedSession is a freshly opened session and its bearer token
type IssuedSession struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *domain.Session `json:"session"`
}

// Claims represents session token claims
type Claims struct {
	SessionID   uuid.UUID `json:"sid"`
	UserID      int64     `json:"uid"`
	Username    string    `json:"username"`
	Permissions []string  `json:"perms"`
	jwt.RegisteredClaims
}

// NewSessionGate creates a new session gate
func NewSessionGate(auth Authenticator, repo domain.SessionRepository, secret, issuer string, ttl time.Duration) *SessionGate {
	return &SessionGate{
		auth:   auth,
		repo:   repo,
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// CanAccess reports whether the user may view page p
func CanAccess(user *domain.User, p domain.PageID) bool {
	return user.CanAccess(p)
}

// IsAdmin reports admin-page permission
func IsAdmin(user *domain.User) bool {
	return user.IsAdmin()
}

// landingPage is home when permitted, else the first permitted page
func landingPage(user *domain.User) domain.PageID {
	if user.CanAccess(domain.PageHome) {
		return domain.PageHome
	}
	if pages := user.Permissions.Pages(); len(pages) > 0 {
		return pages[0]
	}
	return domain.PageHome
}

// Login authenticates against the backend and opens a session.
// Backend rejections surface as *domain.AuthError, transport failures as
// *domain.ConnectivityError. Nothing is retried.
func (g *SessionGate) Login(ctx context.Context, creds domain.Credentials) (*IssuedSession, error) {
	if err := validateRequired(creds); err != nil {
		return nil, err
	}

	user, err := g.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(*user, g.ttl)
	session.CurrentPage = landingPage(user)
	if err := g.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := g.sign(session)
	if err != nil {
		_ = g.repo.Delete(ctx, session.ID)
		return nil, err
	}

	return &IssuedSession{Token: token, ExpiresAt: session.ExpiresAt, Session: session}, nil
}

// Resolve validates a token and loads its live session
func (g *SessionGate) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := g.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return g.repo.GetByID(ctx, claims.SessionID)
}

// Save persists navigation state changes
func (g *SessionGate) Save(ctx context.Context, session *domain.Session) error {
	return g.repo.Update(ctx, session)
}

// Logout ends the session; its token stops resolving
func (g *SessionGate) Logout(ctx context.Context, session *domain.Session) error {
	return g.repo.Delete(ctx, session.ID)
}

// ValidateToken validates a session token
func (g *SessionGate) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(g.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (g *SessionGate) sign(session *domain.Session) (string, error) {
	claims := &Claims{
		SessionID:   session.ID,
		UserID:      session.User.ID,
		Username:    session.User.Username,
		Permissions: session.User.Permissions.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID.String(),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			NotBefore: jwt.NewNumericDate(session.IssuedAt),
			Issuer:    g.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}
