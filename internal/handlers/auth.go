package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/notekeeper-app/notekeeper/internal/auth"
	"github.com/notekeeper-app/notekeeper/internal/store"
)

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		Expires:  time.Now().Add(h.tokens.TTL()),
	})
}

// Register renders the signup form and creates accounts. A fresh account is
// logged in right away and lands on the note list.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, "register", nil)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.render(w, "register", map[string]interface{}{
			"Error":        "Username and password are required",
			"FormUsername": username,
		})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	user, err := h.store.RegisterUser(r.Context(), username, hash)
	if errors.Is(err, store.ErrDuplicateUsername) {
		h.render(w, "register", map[string]interface{}{
			"Error":        "Username already exists",
			"FormUsername": username,
		})
		return
	}
	if store.IsValidation(err) {
		h.render(w, "register", map[string]interface{}{
			"Error":        err.Error(),
			"FormUsername": username,
		})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.setSessionCookie(w, token)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, "login", nil)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverError(w, r, err)
		return
	}
	if err != nil || auth.VerifyPassword(user.PasswordHash, password) != nil {
		// Same message for unknown user and wrong password; username is
		// preserved, the password never is.
		h.render(w, "login", map[string]interface{}{
			"Error":        "Invalid username or password",
			"FormUsername": username,
		})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.setSessionCookie(w, token)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session cookie. Logging out without a session is fine.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
