// Package httpapi exposes the document engine over HTTP/JSON.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"dom-engine/internal/application/port/input"
	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
	"dom-engine/internal/usecase/engine"
)

type Options struct {
	MaxBodyBytes int64
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// AccessLogLevel and AccessLogJSON configure the request logger.
	AccessLogLevel string
	AccessLogJSON  bool
}

type handler struct {
	engine input.DocumentEngine
	logger output.LoggerPort
	limit  int64
}

func NewRouter(eng input.DocumentEngine, logger output.LoggerPort, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 50 << 20
	}
	level := opts.AccessLogLevel
	if level == "" {
		level = "info"
	}

	h := &handler{engine: eng, logger: logger, limit: opts.MaxBodyBytes}

	accessLog := httplog.NewLogger(engine.ServiceName, httplog.Options{
		LogLevel: level,
		JSON:     opts.AccessLogJSON,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Post("/edit-simple", h.editSimple)
	r.Post("/get-dom", h.getDOM(false))
	r.Post("/get-dom-detailed", h.getDOM(true))
	r.Post("/edit-component", h.editComponent)
	r.Post("/get-element", h.getElement)
	r.Post("/get-element-visual-info", h.getVisualInfo)
	r.Post("/screenshot", h.screenshot)
	r.Post("/fetch-url", h.fetchURL)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		input.Health
	}{true, h.engine.Health(r.Context())})
}

func (h *handler) editSimple(w http.ResponseWriter, r *http.Request) {
	var req editSimpleRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.engine.EditSimple(r.Context(), req.HTML, req.Instruction)
	if err != nil {
		h.fail(w, r, err, &req.HTML)
		return
	}
	writeJSON(w, http.StatusOK, editSimpleResponse{
		Success: true,
		HTML:    res.HTML,
		Applied: res.Applied,
		Rule:    res.Rule,
	})
}

// getDOM serves both tree routes. The plain route never reports bounds; the
// detailed one reports them unless include_bounds is false.
func (h *handler) getDOM(detailed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domRequest
		if !h.decode(w, r, &req) {
			return
		}

		tree, err := h.engine.DOM(r.Context(), req.HTML, detailed && orTrue(req.IncludeBounds))
		if err != nil {
			h.fail(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, domResponse{Success: true, DOM: tree})
	}
}

func (h *handler) editComponent(w http.ResponseWriter, r *http.Request) {
	var req editComponentRequest
	if !h.decode(w, r, &req) {
		return
	}

	op, err := entity.NewEditOperation(req.EditType, req.EditValue)
	if err != nil {
		h.fail(w, r, err, &req.HTML)
		return
	}

	out, err := h.engine.EditComponent(r.Context(), req.HTML, req.Selector, op)
	if err != nil {
		h.fail(w, r, err, &out)
		return
	}
	writeJSON(w, http.StatusOK, htmlResponse{Success: true, HTML: out})
}

func (h *handler) getElement(w http.ResponseWriter, r *http.Request) {
	var req elementRequest
	if !h.decode(w, r, &req) {
		return
	}

	info, err := h.engine.Element(r.Context(), req.HTML, req.Selector)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, elementResponse{Success: true, Element: info})
}

func (h *handler) getVisualInfo(w http.ResponseWriter, r *http.Request) {
	var req elementRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.engine.VisualInfo(r.Context(), req.HTML, req.Selector)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, elementResponse{Success: true, Element: snap})
}

func (h *handler) screenshot(w http.ResponseWriter, r *http.Request) {
	var req screenshotRequest
	if !h.decode(w, r, &req) {
		return
	}

	shot, err := h.engine.Screenshot(r.Context(), req.HTML, req.Selector, orTrue(req.FullPage))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, screenshotResponse{
		Success:    true,
		Screenshot: base64.StdEncoding.EncodeToString(shot.Data),
		Format:     shot.Format,
		Width:      shot.Width,
		Height:     shot.Height,
	})
}

func (h *handler) fetchURL(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.engine.FetchURL(r.Context(), entity.FetchRequest{
		URL:               req.URL,
		CaptureScreenshot: orTrue(req.CaptureScreenshot),
		ExtractDesign:     orTrue(req.ExtractDesign),
		FocusArea:         req.FocusArea,
	})
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	resp := fetchResponse{Success: true, URL: res.URL, DesignInfo: res.Design}
	if res.Screenshot != nil {
		resp.Screenshot = base64.StdEncoding.EncodeToString(res.Screenshot.Data)
		resp.ScreenshotFormat = res.Screenshot.Format
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode reads a size-limited JSON body into dst. On failure it writes the
// validation response itself and returns false.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.limit)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: request body exceeds %d bytes", entity.ErrValidation, tooLarge.Limit)
		} else {
			err = fmt.Errorf("%w: invalid JSON body: %v", entity.ErrValidation, err)
		}
		h.fail(w, r, err, nil)
		return false
	}
	return true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error, document *string) {
	kind := entity.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}

	resp := errorResponse{Error: err.Error(), Kind: string(kind)}
	if document != nil && *document != "" {
		resp.HTML = document
	}
	writeJSON(w, status, resp)
}

func statusFor(kind entity.ErrorKind) int {
	switch kind {
	case entity.KindValidation:
		return http.StatusBadRequest
	case entity.KindElementNotFound:
		return http.StatusNotFound
	case entity.KindNavigationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
