package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/numerology"
	"github.com/hpungsan/platenum/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
}

// HandleIndex handles GET /: the calculator form, mapping table and history.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "index", h.indexData(r.Context(), ""))
}

// HandleCalculate handles POST /calculate: run a lookup for the submitted vehicle number.
//
// A failed lookup still renders the page with the error in the result area.
// When the number has no interpretation the calculation steps are shown as well.
func (h *Handlers) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidInput("invalid form data"))
		return
	}
	input := r.FormValue("input")

	out, err := ops.Calculate(r.Context(), h.env, ops.CalculateInput{Input: input})

	// JSON request
	if wantsJSON(r) {
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
		return
	}

	data := h.indexData(r.Context(), input)
	data.Result = out
	status := http.StatusOK
	if err != nil {
		e := asError(err)
		if e.Code == errors.ErrInternal {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Error = e.Message
		status = e.Status
	}

	// htmx request: swap only the result section
	if isHTMX(r) {
		h.renderer.renderBlock(w, status, "index", "result", data)
		return
	}

	h.renderer.renderPageStatus(w, r, status, "index", data)
}

// HandleHistory handles GET /history: list recent lookups.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	result, err := ops.HistoryList(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData:      h.renderer.page("History", "history"),
		History:       result.Items,
		RetentionDays: result.RetentionDays,
	})
}

// HandleHistoryDelete handles POST /history/{index}/delete: remove one entry.
func (h *Handlers) HandleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidInput("history index must be an integer"))
		return
	}

	result, err := ops.HistoryDelete(r.Context(), h.env, ops.HistoryDeleteInput{Index: index})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.afterHistoryChange(w, r)
}

// HandleHistoryClear handles POST /history/clear: remove every entry.
func (h *Handlers) HandleHistoryClear(w http.ResponseWriter, r *http.Request) {
	result, err := ops.HistoryClear(r.Context(), h.env)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.afterHistoryChange(w, r)
}

// afterHistoryChange answers a successful history mutation: a fresh
// history fragment for htmx, otherwise a redirect back to the referring page.
func (h *Handlers) afterHistoryChange(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		data := h.indexData(r.Context(), "")
		h.renderer.renderBlock(w, http.StatusOK, "index", "history-list", data)
		return
	}

	target := "/"
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path == "/history" {
		target = "/history"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// indexData builds the calculator page data. A history read failure is
// logged and shown as an empty list so the calculator stays usable.
func (h *Handlers) indexData(ctx context.Context, input string) IndexPageData {
	data := IndexPageData{
		PageData: h.renderer.page("Calculate", "calculate"),
		Input:    input,
		Table:    numerology.Table(),
	}

	list, err := ops.HistoryList(ctx, h.env)
	if err != nil {
		h.renderer.logger.Warn("history unavailable", "error", err)
		return data
	}
	data.History = list.Items
	data.RetentionDays = list.RetentionDays
	return data
}
