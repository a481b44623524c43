package handlers

import (
	"net/http"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

// Routes маршруты регистрации и входа, монтируются под /auth без аутентификации
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	session, err := h.AuthService.Register(r.Context(), request)
	if err != nil {
		handleError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("user_id", session.User.ID.String()),
		zap.Duration("ms", time.Since(start)))

	setTokenCookie(w, r, session.Token, session.ExpiresAt)
	responseWithJSON(w, http.StatusCreated, dto.FromSession(session))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	session, err := h.AuthService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Пользователь вошёл",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("user_id", session.User.ID.String()))

	setTokenCookie(w, r, session.Token, session.ExpiresAt)
	responseWithJSON(w, http.StatusOK, dto.FromSession(session))
}

// setTokenCookie cookie для браузера, чтобы HTML-страница списка открывалась без заголовка Authorization
func setTokenCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
