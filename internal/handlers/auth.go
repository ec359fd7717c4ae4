package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prepflow/internal/logging"
	"prepflow/internal/middleware"
	"prepflow/internal/models"
	"prepflow/internal/notify"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loginTokenTTL     = 15 * time.Minute
	loginRequestLimit = 5
	loginWindow       = 10 * time.Minute
)

type TokenStore interface {
	Create(ctx context.Context, token *models.AuthToken) error
	FindByToken(ctx context.Context, token string) (*models.AuthToken, error)
	MarkUsed(ctx context.Context, token string) (bool, error)
	CountRecentByEmail(ctx context.Context, email string, window time.Duration) (int64, error)
}

type AccountStore interface {
	FindOrCreate(ctx context.Context, email string) (*models.User, error)
}

type SessionIssuer interface {
	Issue(userID, email string) (string, error)
	TTL() time.Duration
}

type AuthHandler struct {
	tokens        TokenStore
	users         AccountStore
	issuer        SessionIssuer
	notifier      notify.Notifier
	validate      *validator.Validate
	baseURL       string
	secureCookies bool
}

func NewAuthHandler(tokens TokenStore, users AccountStore, issuer SessionIssuer, notifier notify.Notifier, baseURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		tokens:        tokens,
		users:         users,
		issuer:        issuer,
		notifier:      notifier,
		validate:      validator.New(),
		baseURL:       strings.TrimRight(baseURL, "/"),
		secureCookies: secureCookies,
	}
}

// --- Request / Response types ---

type RequestLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// --- POST /auth/request ---

func (h *AuthHandler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	lg := logging.FromContext(r.Context())

	var req RequestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	count, err := h.tokens.CountRecentByEmail(r.Context(), req.Email, loginWindow)
	if err != nil {
		lg.Error("error checking login rate limit", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if count >= loginRequestLimit {
		writeError(w, http.StatusTooManyRequests, "too many login requests, please try again later")
		return
	}

	authToken := &models.AuthToken{
		Email:     req.Email,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(loginTokenTTL),
	}
	if err := h.tokens.Create(r.Context(), authToken); err != nil {
		lg.Error("error creating auth token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create login token")
		return
	}

	link := h.requestBaseURL(r) + "/auth/callback?token=" + url.QueryEscape(authToken.Token)
	msg, err := notify.LoginLink(req.Email, link)
	if err == nil {
		err = h.notifier.Publish(r.Context(), msg)
	}
	if err != nil {
		// The token exists; delivery is best-effort.
		lg.Error("error sending login email", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "login link generated (email delivery may be delayed)",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "login link sent to your email"})
}

// --- GET /auth/verify ---

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	session, user, status, msg := h.exchange(r)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	h.setSessionCookie(w, session)
	writeJSON(w, http.StatusOK, VerifyResponse{Token: session, User: user})
}

// --- GET /auth/callback ---
// Clicked from the email: signs the browser in and sends it to the dashboard.

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	session, _, status, msg := h.exchange(r)
	if status != http.StatusOK {
		http.Error(w, msg, status)
		return
	}
	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusFound)
}

// --- POST /auth/logout ---

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

const msgTokenConsumed = "token has already been used"

// exchange consumes the magic-link token and returns a signed session.
func (h *AuthHandler) exchange(r *http.Request) (string, *models.User, int, string) {
	ctx := r.Context()
	lg := logging.FromContext(ctx)

	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		return "", nil, http.StatusBadRequest, "token is required"
	}

	authToken, err := h.tokens.FindByToken(ctx, tokenValue)
	if err != nil {
		lg.Error("error finding token", zap.Error(err))
		return "", nil, http.StatusInternalServerError, "internal server error"
	}
	if authToken == nil {
		return "", nil, http.StatusUnauthorized, "invalid token"
	}
	if authToken.IsExpired() {
		return "", nil, http.StatusUnauthorized, "token has expired"
	}
	if authToken.IsUsed {
		return "", nil, http.StatusUnauthorized, msgTokenConsumed
	}

	marked, err := h.tokens.MarkUsed(ctx, tokenValue)
	if err != nil {
		lg.Error("error marking token as used", zap.Error(err))
		return "", nil, http.StatusInternalServerError, "internal server error"
	}
	if !marked {
		return "", nil, http.StatusUnauthorized, msgTokenConsumed
	}

	user, err := h.users.FindOrCreate(ctx, authToken.Email)
	if err != nil {
		lg.Error("error finding/creating user", zap.Error(err))
		return "", nil, http.StatusInternalServerError, "internal server error"
	}

	session, err := h.issuer.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		lg.Error("error signing session", zap.Error(err))
		return "", nil, http.StatusInternalServerError, "internal server error"
	}
	return session, user, http.StatusOK, ""
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session,
		Path:     "/",
		MaxAge:   int(h.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// requestBaseURL falls back to the incoming host when BASE_URL is unset.
func (h *AuthHandler) requestBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
