package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/session"
)

// ErrInvalidToken is returned for a token that fails signature, expiry or issuer checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the bearer token claims. Role is "admin" or "user"; a user
// token names the one account it may read.
type Claims struct {
	Role          string `json:"role"`
	AccountNumber string `json:"account_number,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier returns a Verifier for secret. An empty secret is an error.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required (server.jwt_secret or PASSBOOK_JWT_SECRET)")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for sess that expires after ttl.
func (v *Verifier) Issue(sess session.Session, ttl time.Duration, now time.Time) (string, error) {
	if sess.Role != model.RoleAdmin && sess.Role != model.RoleUser {
		return "", fmt.Errorf("cannot issue a token for role %q", sess.Role)
	}
	claims := Claims{
		Role:          string(sess.Role),
		AccountNumber: sess.AccountNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse validates tokenStr and resolves it to a session.
func (v *Verifier) Parse(tokenStr string) (session.Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := new(Claims)
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return session.Session{}, ErrInvalidToken
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return session.Session{}, ErrInvalidToken
	}
	switch role {
	case model.RoleAdmin:
		return session.Admin(), nil
	case model.RoleUser:
		sess, err := session.User(claims.AccountNumber)
		if err != nil {
			return session.Session{}, ErrInvalidToken
		}
		return sess, nil
	default:
		return session.Session{}, ErrInvalidToken
	}
}

type ctxKey struct{}

func withSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// SessionFrom returns the caller's session, or a guest session when the
// request was not authenticated.
func SessionFrom(ctx context.Context) session.Session {
	if sess, ok := ctx.Value(ctxKey{}).(session.Session); ok {
		return sess
	}
	return session.Guest()
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sess, err := s.verifier.Parse(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}
