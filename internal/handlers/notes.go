package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/notekeeper-app/notekeeper/internal/store"
)

func noteIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// noteInputFromForm decodes the shared note form fields. An absent or
// malformed category select means "no category", as the original form did.
func noteInputFromForm(r *http.Request) store.NoteInput {
	in := store.NoteInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Pinned:  r.FormValue("is_pinned") == "on",
		Tags:    store.ParseTagList(r.FormValue("tags")),
	}
	if raw := r.FormValue("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			in.CategoryID = &id
		}
	}
	return in
}

// Index lists the user's notes with their categories, pinned first.
// Query params q, category, tag, pinned and sort narrow the list.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := store.NoteFilter{
		Search:     query.Get("q"),
		Tag:        query.Get("tag"),
		PinnedOnly: query.Get("pinned") == "1",
		Sort:       query.Get("sort"),
	}
	if raw := query.Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CategoryID = id
		}
	}

	notes, err := h.store.ListNotes(r.Context(), identity.UserID, filter)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	categories, err := h.store.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, "index", map[string]interface{}{
		"Username":   identity.Username,
		"Notes":      notes,
		"Categories": categories,
		"Search":     filter.Search,
		"Tag":        filter.Tag,
		"Pinned":     filter.PinnedOnly,
		"Sort":       filter.Sort,
	})
}

func (h *Handler) NewNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		h.render(w, "note_form", map[string]interface{}{
			"Username":   identity.Username,
			"Categories": categories,
		})
		return
	}

	in := noteInputFromForm(r)
	_, err = h.store.CreateNote(r.Context(), identity.UserID, in)
	if store.IsValidation(err) {
		h.render(w, "note_form", map[string]interface{}{
			"Username":   identity.Username,
			"Categories": categories,
			"Error":      err.Error(),
			"Title":      in.Title,
			"Content":    in.Content,
			"TagsStr":    strings.Join(in.Tags, ", "),
			"IsPinned":   in.Pinned,
		})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		// Category id not owned by the caller.
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) ViewNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	noteID, err := noteIDFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	note, err := h.store.GetNote(r.Context(), identity.UserID, noteID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, "note_view", map[string]interface{}{
		"Username": identity.Username,
		"Note":     note,
	})
}

func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	noteID, err := noteIDFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	categories, err := h.store.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		note, err := h.store.GetNote(r.Context(), identity.UserID, noteID)
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}

		h.render(w, "note_form", map[string]interface{}{
			"Username":   identity.Username,
			"Categories": categories,
			"Note":       note,
			"Title":      note.Title,
			"Content":    note.Content,
			"TagsStr":    strings.Join(note.TagNames(), ", "),
			"IsPinned":   note.IsPinned,
			"CategoryID": note.CategoryID,
		})
		return
	}

	in := noteInputFromForm(r)
	if _, err := h.store.UpdateNote(r.Context(), identity.UserID, noteID, in); err != nil {
		if store.IsValidation(err) {
			h.render(w, "note_form", map[string]interface{}{
				"Username":   identity.Username,
				"Categories": categories,
				"Error":      err.Error(),
				"Title":      in.Title,
				"Content":    in.Content,
				"TagsStr":    strings.Join(in.Tags, ", "),
				"IsPinned":   in.Pinned,
			})
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/note/"+strconv.FormatInt(noteID, 10), http.StatusSeeOther)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	noteID, err := noteIDFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.store.DeleteNote(r.Context(), identity.UserID, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	noteID, err := noteIDFromPath(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.store.TogglePin(r.Context(), identity.UserID, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
