package web

import (
	"database/sql"
	_ "embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/quietfold/rotor/internal/config"
	"github.com/quietfold/rotor/internal/errors"
	"github.com/quietfold/rotor/internal/ops"
)

//go:embed help.md
var helpMarkdown string

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleWorkbench handles GET /workbench — the encrypt/decrypt form.
func (h *Handlers) HandleWorkbench(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "workbench", WorkbenchPageData{
		PageData: PageData{
			Title:   "Workbench",
			Version: h.renderer.version,
			Nav:     "workbench",
		},
		Shift: "3",
		Mode:  "encrypt",
	})
}

// HandleWorkbenchSubmit handles POST /workbench — run encrypt or decrypt.
func (h *Handlers) HandleWorkbenchSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	text := r.FormValue("text")
	shiftStr := r.FormValue("shift")
	mode := r.FormValue("mode")
	if mode != "decrypt" {
		mode = "encrypt"
	}

	data := WorkbenchPageData{
		PageData: PageData{
			Title:   "Workbench",
			Version: h.renderer.version,
			Nav:     "workbench",
		},
		Text:  text,
		Shift: shiftStr,
		Mode:  mode,
	}

	shift, err := strconv.Atoi(strings.TrimSpace(shiftStr))
	if err != nil {
		data.FormError = "shift must be an integer"
		h.renderer.renderPage(w, r, "workbench", data)
		return
	}

	label := ptrString(r.FormValue("label"))

	if mode == "decrypt" {
		result, err := ops.Decrypt(r.Context(), h.db, h.cfg, ops.DecryptInput{
			Text:  text,
			Shift: shift,
			Label: label,
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Result = result.Text
		data.HistoryID = result.HistoryID
	} else {
		result, err := ops.Encrypt(r.Context(), h.db, h.cfg, ops.EncryptInput{
			Text:  text,
			Shift: shift,
			Label: label,
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Result = result.Text
		data.HistoryID = result.HistoryID
	}

	data.HasResult = true
	h.renderer.renderPage(w, r, "workbench", data)
}

// HandleCrack handles GET /crack — the crack form.
func (h *Handlers) HandleCrack(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "crack", CrackPageData{
		PageData: PageData{
			Title:   "Crack",
			Version: h.renderer.version,
			Nav:     "crack",
		},
	})
}

// HandleCrackSubmit handles POST /crack — brute-force a ciphertext.
func (h *Handlers) HandleCrackSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	text := r.FormValue("text")

	top := 0
	if s := r.FormValue("top"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("top must be an integer"))
			return
		}
		top = v
	}

	result, err := ops.Crack(r.Context(), h.db, h.cfg, ops.CrackInput{
		Text:  text,
		Top:   top,
		Label: ptrString(r.FormValue("label")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := CrackPageData{
		PageData: PageData{
			Title:   "Crack",
			Version: h.renderer.version,
			Nav:     "crack",
		},
		Text:       text,
		Candidates: result.Candidates,
		HistoryID:  result.HistoryID,
		HasResult:  true,
	}
	if len(result.Candidates) > 0 {
		data.Best = &result.Candidates[0]
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "crack", "crack-results", data)
		return
	}

	h.renderer.renderPage(w, r, "crack", data)
}

// HandleHistory handles GET /history — list past operations.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	op := r.URL.Query().Get("op")

	input := ops.ListInput{
		Op:             op,
		Limit:          parseIntParam(r, "limit", 20),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData: PageData{
			Title:   "History",
			Version: h.renderer.version,
			Nav:     "history",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Op:         op,
		Deleted:    input.IncludeDeleted,
	})
}

// HandleDetail handles GET /history/{id} — view a single history entry.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("entry ID is required"))
		return
	}

	includeText := true
	input := ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
		IncludeText:    &includeText,
	}

	entry, err := ops.Fetch(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   displayTitle(entry.Label, entry.ID),
			Version: h.renderer.version,
			Nav:     "history",
		},
		Entry: entry,
	})
}

// HandleDelete handles DELETE /history/{id} — soft-delete a history entry.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("entry ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/history")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/history", http.StatusFound)
}

// HandlePurge handles POST /history/purge — permanently delete soft-deleted entries.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{}

	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"purged":  result.Purged,
			"message": result.Message,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/history?include_deleted=true", http.StatusFound)
}

// HandleHelp handles GET /help — usage notes rendered from markdown.
func (h *Handlers) HandleHelp(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "help", HelpPageData{
		PageData: PageData{
			Title:   "Help",
			Version: h.renderer.version,
			Nav:     "help",
		},
		RenderedHTML: renderMarkdown(helpMarkdown),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// displayTitle returns the entry label if present, or a truncated ID.
func displayTitle(label *string, id string) string {
	if label != nil && *label != "" {
		return *label
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
