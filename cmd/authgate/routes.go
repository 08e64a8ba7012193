package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alon-poshil/authgate"
	"github.com/alon-poshil/authgate/middleware"
)

// newAuthHandler mounts the auth endpoints under /api/auth behind the rate limiter.
func newAuthHandler(engine *authgate.Engine) http.Handler {
	mux := http.NewServeMux()
	session := middleware.Session(engine)
	required := middleware.RequireSession(engine)

	mux.Handle("POST /api/auth/sign-up/email", session(signUpHandler(engine)))
	mux.Handle("POST /api/auth/sign-in/email", session(signInHandler(engine)))
	mux.Handle("POST /api/auth/sign-out", signOutHandler(engine))
	mux.Handle("GET /api/auth/get-session", session(getSessionHandler()))
	mux.Handle("POST /api/auth/request-password-reset", requestResetHandler(engine))
	mux.Handle("POST /api/auth/reset-password", resetPasswordHandler(engine))
	mux.Handle("POST /api/auth/send-verification-email", sendVerificationHandler(engine))
	mux.Handle("GET /api/auth/verify-email", session(verifyEmailHandler(engine)))
	mux.Handle("POST /api/auth/delete-user", required(deleteUserHandler(engine)))

	return middleware.RateLimit(engine)(mux)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func signUpHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
			Image    string `json:"image"`
		}
		if !decode(w, r, &body) {
			return
		}

		res, token, err := engine.SignUpEmail(r.Context(), authgate.SignUpInput{
			Email:    body.Email,
			Password: body.Password,
			Name:     body.Name,
			Image:    body.Image,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeSession(w, engine, http.StatusOK, res, token)
	}
}

func signInHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decode(w, r, &body) {
			return
		}

		res, token, err := engine.SignInEmail(r.Context(), body.Email, body.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSession(w, engine, http.StatusOK, res, token)
	}
}

func signOutHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.SignOut(r.Context(), r.Header); err != nil {
			writeError(w, err)
			return
		}
		expired := engine.SessionCookie("", time.Unix(0, 0))
		expired.MaxAge = -1
		http.SetCookie(w, expired)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func getSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionBody(res))
	}
}

func requestResetHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email      string `json:"email"`
			RedirectTo string `json:"redirectTo"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := engine.RequestPasswordReset(r.Context(), body.Email, body.RedirectTo); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"status": true})
	}
}

func resetPasswordHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token       string `json:"token"`
			NewPassword string `json:"newPassword"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := engine.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"status": true})
	}
}

func sendVerificationHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email       string `json:"email"`
			CallbackURL string `json:"callbackURL"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := engine.SendVerificationEmail(r.Context(), body.Email, body.CallbackURL); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"status": true})
	}
}

func verifyEmailHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, token, err := engine.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
		if err != nil {
			writeError(w, err)
			return
		}
		if res == nil {
			writeJSON(w, http.StatusOK, map[string]bool{"status": true})
			return
		}
		writeSession(w, engine, http.StatusOK, res, token)
	}
}

func deleteUserHandler(engine *authgate.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, _ := middleware.SessionFromContext(r.Context())
		if err := engine.DeleteUser(r.Context(), res.UserID()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// ---------------------------------------------------------------------------
// Encoding helpers
// ---------------------------------------------------------------------------

type userBody struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Name          string `json:"name,omitempty"`
	Image         string `json:"image,omitempty"`
	Role          string `json:"role,omitempty"`
}

type sessionPayload struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ExpiresAt      time.Time `json:"expiresAt"`
	ImpersonatedBy string    `json:"impersonatedBy,omitempty"`
}

func sessionBody(res *authgate.SessionResult) map[string]any {
	return map[string]any{
		"session": sessionPayload{
			ID:             res.Session.ID,
			UserID:         res.Session.UserID,
			ExpiresAt:      res.Session.ExpiresAt,
			ImpersonatedBy: res.Session.ImpersonatedBy,
		},
		"user": userBody{
			ID:            res.User.ID,
			Email:         res.User.Email,
			EmailVerified: res.User.EmailVerified,
			Name:          res.User.Name,
			Image:         res.User.Image,
			Role:          res.User.Role,
		},
	}
}

func writeSession(w http.ResponseWriter, engine *authgate.Engine, status int, res *authgate.SessionResult, token string) {
	if res == nil {
		writeJSON(w, status, map[string]any{"token": nil})
		return
	}
	if token != "" {
		http.SetCookie(w, engine.SessionCookie(token, res.Session.ExpiresAt))
	}
	body := sessionBody(res)
	body["token"] = token
	writeJSON(w, status, body)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	switch {
	case errors.Is(err, authgate.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, authgate.ErrEmailNotVerified):
		status, msg = http.StatusForbidden, "email not verified"
	case errors.Is(err, authgate.ErrAccountExists):
		status, msg = http.StatusUnprocessableEntity, "user already exists"
	case errors.Is(err, authgate.ErrPasswordPolicy):
		status, msg = http.StatusBadRequest, "password does not meet policy"
	case errors.Is(err, authgate.ErrInvalidToken):
		status, msg = http.StatusBadRequest, "invalid token"
	case errors.Is(err, authgate.ErrUserNotFound):
		status, msg = http.StatusNotFound, "user not found"
	case errors.Is(err, authgate.ErrFeatureDisabled):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, authgate.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, authgate.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "unauthorized"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
