package middleware

import (
	"context"
	"net/http"
	"strings"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

const ActorKey contextKey = "actor"

// TokenCookie cookie, которую ставит HTML-вход
const TokenCookie = "access_token"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Actor, error)
}

// Authenticate кладёт актора в контекст; запрос без валидного токена получает 401
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				logger.Warn("HTTP: Запрос без токена",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				unauthenticated(w, r)
				return
			}

			actor, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("HTTP: Токен отклонён",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr),
					zap.Error(err))
				unauthenticated(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFromContext возвращает пустого (неаутентифицированного) актора, если его нет в контексте
func ActorFromContext(ctx context.Context) user.Actor {
	if actor, ok := ctx.Value(ActorKey).(user.Actor); ok {
		return actor
	}
	return user.Actor{}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthenticated(w http.ResponseWriter, r *http.Request) {
	busErr := service.NewUnauthenticated()
	w.Header().Set("WWW-Authenticate", `Bearer realm="todo"`)
	writeError(w, r, http.StatusUnauthorized, busErr.Code, busErr.Message, nil)
}
