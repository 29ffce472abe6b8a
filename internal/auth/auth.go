// Package auth covers the credential surface: bcrypt password hashing,
// opaque request tokens and the middleware that resolves them into an
// authenticated author on the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medialist/rest/internal/errresponse"
	"github.com/medialist/rest/internal/model"
)

// ErrAuth covers unknown usernames and wrong passwords uniformly so
// callers can't probe which of the two failed.
var ErrAuth = errors.New("authentication failed")

// AuthorSource resolves an opaque token key to its author.
type AuthorSource interface {
	AuthorByToken(key string) (*model.Author, error)
}

type ctxKey int8

const authorKey ctxKey = iota

// With returns a context carrying the authenticated author.
func With(ctx context.Context, a *model.Author) context.Context {
	return context.WithValue(ctx, authorKey, a)
}

// From returns the authenticated author placed by the Required
// middleware.
func From(ctx context.Context) (*model.Author, bool) {
	a, ok := ctx.Value(authorKey).(*model.Author)
	return a, ok
}

// HashPassword derives the stored bcrypt credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewSecretKey mints the one-time activation key embedded in emailed
// links.
func NewSecretKey() string {
	return uuid.NewString()
}

// ValidSecretKey reports whether s even parses as a secret key, so
// malformed values can 404 without touching the store.
func ValidSecretKey(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// TokenFromHeader extracts the key from an "Authorization: Token ..."
// header.
func TokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 6 && strings.EqualFold(header[:6], "token ") {
		return strings.TrimSpace(header[6:])
	}
	return ""
}

// Required rejects requests without a valid token and stores the
// resolved author on the request context for handlers to read via
// From.
func Required(src AuthorSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := TokenFromHeader(r)
			if key == "" {
				respond(w, r, errresponse.Unauthorized("Authentication credentials were not provided."))

				return
			}

			author, err := src.AuthorByToken(key)
			if err != nil {
				respond(w, r, errresponse.Unauthorized("Invalid token."))

				return
			}

			next.ServeHTTP(w, r.WithContext(With(r.Context(), author)))
		})
	}
}

// Verified gates a route to authors who completed email activation.
// Must sit below Required in the middleware chain.
func Verified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		author, ok := From(r.Context())
		if !ok || !author.Verified {
			respond(w, r, errresponse.Forbidden("Author is not verified."))

			return
		}
		next.ServeHTTP(w, r)
	})
}

// Staff gates a route to promoted staff authors. Must sit below
// Required.
func Staff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		author, ok := From(r.Context())
		if !ok || !author.Staff {
			respond(w, r, errresponse.Forbidden("You do not have permission to perform this action."))

			return
		}
		next.ServeHTTP(w, r)
	})
}

// respond writes a rejection from middleware, which has no Resource
// logger to reach for; the process-wide sugared logger set up in main
// records render failures instead.
func respond(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		zap.S().Errorw(err.Error())
	}
}
