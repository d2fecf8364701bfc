package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/notekeeper-app/notekeeper/internal/store"
)

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, "categories", map[string]interface{}{
		"Username":   identity.Username,
		"Categories": categories,
	})
}

func (h *Handler) NewCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, "category_form", map[string]interface{}{
			"Username": identity.Username,
		})
		return
	}

	name := r.FormValue("name")
	color := r.FormValue("color")

	if _, err := h.store.CreateCategory(r.Context(), identity.UserID, name, color); err != nil {
		if store.IsValidation(err) {
			h.render(w, "category_form", map[string]interface{}{
				"Username": identity.Username,
				"Error":    err.Error(),
				"Name":     name,
				"Color":    color,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// DeleteCategory removes a category; its notes stay, uncategorized.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	categoryID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.store.DeleteCategory(r.Context(), identity.UserID, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}
