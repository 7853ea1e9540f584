package http

import (
	"net/http"
	"time"

	"pinboard/internal/auth/service"
	"pinboard/internal/common/config"
	"pinboard/internal/common/constants"
	commonhttp "pinboard/internal/common/http"
	"pinboard/internal/common/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type Handler struct {
	auth *service.AuthService
	cfg  config.Config
	log  *logger.Logger
}

func NewHandler(auth *service.AuthService, cfg config.Config, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, cfg: cfg, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.login)))
	mux.HandleFunc("/api/logout", commonhttp.RequireMethod(http.MethodPost)(h.logout))
	return mux
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := commonhttp.ValidateStruct(&req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.setSessionCookie(w, result.Token)
	commonhttp.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err == nil && cookie.Value != "" {
		h.auth.Logout(r.Context(), cookie.Value)
	}

	h.clearSessionCookie(w)
	commonhttp.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.cfg.IsProduction(),
	}
	if h.cfg.SessionTTL > 0 {
		cookie.MaxAge = int(h.cfg.SessionTTL / time.Second)
	}

	http.SetCookie(w, cookie)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.cfg.IsProduction(),
	})
}
