package handler

import (
	"image"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/service"
	apperrors "pdf-viewer/pkg/errors"

	"github.com/gorilla/mux"
)

// ViewerHandler handles viewer HTTP requests
type ViewerHandler struct {
	viewers *service.ViewerService
	logger  domain.Logger
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(viewers *service.ViewerService, logger domain.Logger) *ViewerHandler {
	return &ViewerHandler{
		viewers: viewers,
		logger:  logger,
	}
}

type viewerResponse struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	domain.ViewState
}

func newViewerResponse(s *service.Session) viewerResponse {
	return viewerResponse{
		ID:        s.ID,
		Width:     s.Viewport.X,
		Height:    s.Viewport.Y,
		ViewState: s.View.State(),
	}
}

type createRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type loadRequest struct {
	Source string `json:"source"`
	Wait   bool   `json:"wait"`
}

type pageRequest struct {
	Page *int `json:"page"`
}

type zoomRequest struct {
	Zoom *int `json:"zoom"`
}

type positionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CreateViewer handles viewer creation
func (h *ViewerHandler) CreateViewer(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	session, err := h.viewers.Create(req.Width, req.Height)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/viewers/"+session.ID)
	writeJSON(w, http.StatusCreated, newViewerResponse(session))
}

// GetViewer returns the viewer state
func (h *ViewerHandler) GetViewer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newViewerResponse(session))
}

// DeleteViewer closes a viewer
func (h *ViewerHandler) DeleteViewer(w http.ResponseWriter, r *http.Request) {
	if err := h.viewers.Delete(mux.Vars(r)["id"]); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadDocument starts loading a document. Without wait the response is
// 202 and progress is visible through GetViewer.
func (h *ViewerHandler) LoadDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req loadRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}

	if _, err := h.viewers.Load(r.Context(), id, req.Source, req.Wait); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	session, err := h.viewers.Get(id)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if !req.Wait {
		status = http.StatusAccepted
	}
	writeJSON(w, status, newViewerResponse(session))
}

// SetPage handles explicit page changes
func (h *ViewerHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req pageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if req.Page == nil {
		writeError(w, http.StatusBadRequest, "page is required")
		return
	}

	if err := session.View.SetPage(*req.Page); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newViewerResponse(session))
}

// NextPage advances one page
func (h *ViewerHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.View.Next()
	writeJSON(w, http.StatusOK, newViewerResponse(session))
}

// PreviousPage goes back one page
func (h *ViewerHandler) PreviousPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.View.Previous()
	writeJSON(w, http.StatusOK, newViewerResponse(session))
}

// SetZoom handles zoom changes
func (h *ViewerHandler) SetZoom(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req zoomRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if req.Zoom == nil {
		writeError(w, http.StatusBadRequest, "zoom is required")
		return
	}

	if err := session.View.SetZoom(*req.Zoom); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newViewerResponse(session))
}

// SetPosition handles pan changes
func (h *ViewerHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	session.View.SetPosition(image.Pt(req.X, req.Y))
	writeJSON(w, http.StatusOK, newViewerResponse(session))
}

// GetFrame draws the viewer and returns the viewport as PNG. The ETag is
// the viewer revision, so unchanged viewers answer 304.
func (h *ViewerHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	// Read the revision before drawing so a concurrent change yields a
	// stale tag rather than a stale image.
	etag := `"` + strconv.FormatUint(session.View.State().Revision, 10) + `"`
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	frame, drawn, err := h.viewers.Frame(session.ID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	w.Header().Set("X-Frame-Drawn", strconv.FormatBool(drawn))
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, frame); err != nil {
		h.logger.Warn("Failed to encode frame", "viewer_id", session.ID, "error", err)
	}
}

func (h *ViewerHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeAppError(w, h.logger, apperrors.NewValidationError("Viewer ID is required"))
		return nil, false
	}
	session, err := h.viewers.Get(id)
	if err != nil {
		writeAppError(w, h.logger, err)
		return nil, false
	}
	return session, true
}
