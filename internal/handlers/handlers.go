package handlers

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/notekeeper-app/notekeeper/internal/auth"
	"github.com/notekeeper-app/notekeeper/internal/store"
)

// Handler is the HTTP layer over the store: session checks, form decoding,
// error mapping and rendering.
type Handler struct {
	store  *store.Store
	tokens *auth.TokenService
	pages  map[string]*template.Template
	log    zerolog.Logger
}

func New(st *store.Store, tokens *auth.TokenService, log zerolog.Logger) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{store: st, tokens: tokens, pages: pages, log: log}, nil
}

// Routes wires every route. Anonymous routes sit on the root router; the rest
// live behind the auth guard, which redirects to /login before any handler
// touches domain data.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/register", h.Register).Methods("GET", "POST")
	r.HandleFunc("/login", h.Login).Methods("GET", "POST")

	s := r.PathPrefix("/").Subrouter()
	s.Use(auth.RequireAuth(h.tokens))

	s.HandleFunc("/logout", h.Logout).Methods("GET")
	s.HandleFunc("/", h.Index).Methods("GET")
	s.HandleFunc("/note/new", h.NewNote).Methods("GET", "POST")
	s.HandleFunc("/note/{id:[0-9]+}", h.ViewNote).Methods("GET")
	s.HandleFunc("/note/{id:[0-9]+}/edit", h.EditNote).Methods("GET", "POST")
	s.HandleFunc("/note/{id:[0-9]+}/delete", h.DeleteNote).Methods("POST")
	s.HandleFunc("/note/{id:[0-9]+}/toggle-pin", h.TogglePin).Methods("POST")
	s.HandleFunc("/categories", h.Categories).Methods("GET")
	s.HandleFunc("/category/new", h.NewCategory).Methods("GET", "POST")
	s.HandleFunc("/category/{id:[0-9]+}/delete", h.DeleteCategory).Methods("POST")

	return r
}

// identity returns the authenticated user or sends the caller back to /login.
// Behind RequireAuth this never fails; the check keeps handlers safe if one
// is ever wired outside the guard.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
