package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const actorKey contextKey = "actor"

// Claims is the token payload issued by the user service.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// WithActor stores the caller identity in ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the caller identity, anonymous if none was set.
func ActorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey).(domain.Actor)
	return actor
}

// Auth verifies HS256 tokens taken from the auth cookie or a Bearer header.
type Auth struct {
	secret []byte
	cookie string
	logger *logger.Logger
}

func NewAuth(secret, cookieName string, log *logger.Logger) *Auth {
	if cookieName == "" {
		cookieName = "token"
	}
	return &Auth{secret: []byte(secret), cookie: cookieName, logger: log.Named("Auth")}
}

func (a *Auth) tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(a.cookie); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// Parse validates a token string and returns the actor it names.
func (a *Auth) Parse(token string) (domain.Actor, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Actor{}, err
	}
	if !parsed.Valid || claims.UserID == "" {
		return domain.Actor{}, errors.New("token carries no user")
	}
	role := domain.RoleUser
	if domain.Role(claims.Role) == domain.RoleAdmin {
		role = domain.RoleAdmin
	}
	return domain.Actor{UserID: claims.UserID, Role: role}, nil
}

// Optional attaches the actor when a valid token is present and lets
// anonymous requests through. A bad token is treated as no token.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := a.tokenFrom(r); token != "" {
			actor, err := a.Parse(token)
			if err == nil {
				r = r.WithContext(WithActor(r.Context(), actor))
			} else {
				a.logger.Debug("Ignoring invalid token on public route", zap.String("path", r.URL.Path), zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid token.
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.tokenFrom(r)
		if token == "" {
			response.Error(w, r, a.logger, domain.ErrUnauthorized)
			return
		}
		actor, err := a.Parse(token)
		if err != nil {
			a.logger.Warn("Token validation failed", zap.String("path", r.URL.Path), zap.Error(err))
			msg := "token is invalid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token has expired"
			}
			response.Error(w, r, a.logger, wrapUnauthorized(msg))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireAdmin must run after Required.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFrom(r.Context())
		if !actor.IsAdmin() {
			a.logger.Warn("Admin route denied", zap.String("path", r.URL.Path), zap.String("user_id", actor.UserID))
			response.Error(w, r, a.logger, forbiddenAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}
