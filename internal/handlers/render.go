package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "register", "index", "note_form", "note_view", "categories", "category_form",
}

// parseTemplates builds one template set per page, each page paired with the
// base layout.
func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"join":  strings.Join,
		"deref": func(p *int64) int64 { return *p },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func (h *Handler) render(w http.ResponseWriter, page string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	tmpl, ok := h.pages[page]
	if !ok {
		h.log.Error().Str("page", page).Msg("unknown template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.log.Error().Err(err).Str("page", page).Msg("template render failed")
	}
}
