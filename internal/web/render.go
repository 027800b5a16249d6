package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/numerology"
	"github.com/hpungsan/platenum/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "calculate", "history"
}

// IndexPageData is the template data for the calculator page.
type IndexPageData struct {
	PageData
	Input         string
	Result        *ops.CalculateOutput
	Error         string
	Table         []numerology.TableRow
	History       []ops.HistoryItem
	RetentionDays int
}

// HistoryPageData is the template data for the history page.
type HistoryPageData struct {
	PageData
	History       []ops.HistoryItem
	RetentionDays int
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"isoTime":    isoTime,
		"markdown":   renderMarkdown,
		"upper":      strings.ToUpper,
		"join":       strings.Join,
	}

	// Layout and shared partials form the base every page is cloned from
	base := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html", "partials.html"))

	pages := map[string]string{
		"index":   "index.html",
		"history": "history.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(base.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// page returns PageData for the given title and nav item.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For htmx requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && isHTMX(req) {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for htmx partial swaps that target a sub-section of the page.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("template not found", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", "page", page, "block", block, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	e := asError(err)
	message := e.Message
	if e.Code == errors.ErrInternal {
		r.logger.Error("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		message = "an internal error occurred"
	}

	// htmx request: return HTML fragment
	if isHTMX(req) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(e.Status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSON(w, e.Status, map[string]any{
			"error": map[string]any{
				"code":    string(e.Code),
				"message": message,
				"status":  e.Status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, e.Status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", e.Status), ""),
		StatusCode: e.Status,
		Message:    message,
	})
}

// asError converts any error to *errors.Error, treating unknown errors as internal.
func asError(err error) *errors.Error {
	if e, ok := errors.As(err); ok {
		return e
	}
	return errors.NewInternal(err)
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a timestamp as "2006-01-02 15:04" in local time.
func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
