package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/citewall/internal/auth"
	"github.com/sakif/citewall/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler drives the two identity flows: the Discord OAuth dance and the
// local email/password endpoints. On success both set the session JWT as an
// HttpOnly cookie.
type AuthHandler struct {
	auth         *service.AuthService
	discord      *auth.DiscordProvider
	logger       *slog.Logger
	cookieSecure bool
}

// NewAuthHandler creates an AuthHandler. cookieSecure should be true whenever
// the server is reached over HTTPS.
func NewAuthHandler(
	authSvc *service.AuthService,
	discord *auth.DiscordProvider,
	logger *slog.Logger,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		auth:         authSvc,
		discord:      discord,
		logger:       logger,
		cookieSecure: cookieSecure,
	}
}

// HandleDiscordLogin starts the OAuth flow: generate a random state, store it
// in a short-lived cookie, and redirect to Discord's consent page.
//
// HTTP: GET /auth/discord/login
func (h *AuthHandler) HandleDiscordLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		h.logger.Error("failed to generate OAuth state", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.discord.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleDiscordCallback completes the OAuth flow: check the state against the
// cookie, exchange the code for the Discord profile, upsert the account, and
// set the session cookie.
//
// HTTP: GET /auth/discord/callback?code=...&state=...
func (h *AuthHandler) HandleDiscordCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "OAuth state mismatch"})
		return
	}
	h.clearCookie(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "missing authorization code"})
		return
	}

	du, err := h.discord.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("Discord code exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Discord authentication failed"})
		return
	}

	result, err := h.auth.LoginOrRegisterDiscord(r.Context(), du)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleRegister creates a local email/password account and logs it in.
//
// HTTP: POST /auth/register
// BODY: {"pseudo": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pseudo   string `json:"pseudo"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	result, err := h.auth.RegisterPassword(r.Context(), req.Pseudo, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin authenticates a local account.
//
// HTTP: POST /auth/login
// BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	result, err := h.auth.LoginPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the session cookie. The JWT itself stays valid until it
// expires; logout only removes it from the browser.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, auth.CookieName)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
