package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/service"
)

func newTestRouter() (http.Handler, *service.ViewerService) {
	logger := NewMockHandlerLogger()
	svc := service.NewViewerService(mockRenderer{}, mockFetcher{}, image.Pt(40, 50), logger)
	return NewRouter(NewViewerHandler(svc, logger), logger, []string{"http://localhost:5173"}), svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeViewer(t *testing.T, rr *httptest.ResponseRecorder) viewerResponse {
	t.Helper()
	var resp viewerResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error %q: %v", rr.Body.String(), err)
	}
	return resp
}

func createViewer(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/v1/viewers", `{"width":8,"height":6}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	return decodeViewer(t, rr).ID
}

func loadThreePages(t *testing.T, h http.Handler, id string) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/load", `{"source":"three.pdf","wait":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter()

	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestCreateViewer(t *testing.T) {
	h, svc := newTestRouter()

	rr := do(t, h, http.MethodPost, "/api/v1/viewers", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	resp := decodeViewer(t, rr)
	if resp.Width != 40 || resp.Height != 50 || resp.Zoom != 1 || resp.Status != domain.LoadStatusIdle {
		t.Fatalf("unexpected viewer %+v", resp)
	}
	if rr.Header().Get("Location") != "/api/v1/viewers/"+resp.ID {
		t.Fatalf("unexpected location %s", rr.Header().Get("Location"))
	}
	if svc.Count() != 1 {
		t.Fatalf("expected 1 viewer, got %d", svc.Count())
	}
}

func TestCreateViewer_BadBody(t *testing.T) {
	h, _ := newTestRouter()

	rr := do(t, h, http.MethodPost, "/api/v1/viewers", `{"width":"wide"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	rr = do(t, h, http.MethodPost, "/api/v1/viewers", `{"width":-5}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	rr = do(t, h, http.MethodPost, "/api/v1/viewers", `{"width":2000000000000000000,"height":10}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected huge viewport to be rejected with %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestUnknownViewer(t *testing.T) {
	h, _ := newTestRouter()

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/viewers/missing", ""},
		{http.MethodDelete, "/api/v1/viewers/missing", ""},
		{http.MethodPost, "/api/v1/viewers/missing/next", ""},
		{http.MethodPost, "/api/v1/viewers/missing/load", `{"source":"three.pdf"}`},
		{http.MethodGet, "/api/v1/viewers/missing/frame.png", ""},
	} {
		rr := do(t, h, tc.method, tc.path, tc.body)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusNotFound, rr.Code)
		}
	}
}

func TestLoadDocument(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/load", `{"source":"three.pdf","wait":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	resp := decodeViewer(t, rr)
	if resp.Page != 1 || resp.PageCount != 3 || resp.Status != domain.LoadStatusReady || resp.Source != "three.pdf" {
		t.Fatalf("unexpected viewer %+v", resp)
	}
}

func TestLoadDocument_Async(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)

	rr := do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/load", `{"source":"three.pdf"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
}

func TestLoadDocument_Errors(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)

	tests := []struct {
		body     string
		wantCode int
		wantType string
	}{
		{`{}`, http.StatusBadRequest, ""},
		{`{"source":"empty.pdf","wait":true}`, http.StatusUnprocessableEntity, "processing"},
		{`{"source":"http://unreachable.example/doc.pdf","wait":true}`, http.StatusBadGateway, "network"},
		{`{"source":"three.pdf","extra":1}`, http.StatusBadRequest, "validation"},
	}
	for _, tt := range tests {
		rr := do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/load", tt.body)
		if rr.Code != tt.wantCode {
			t.Fatalf("%s: expected status %d, got %d: %s", tt.body, tt.wantCode, rr.Code, rr.Body.String())
		}
		if resp := decodeError(t, rr); string(resp.Type) != tt.wantType {
			t.Fatalf("%s: expected type %q, got %q", tt.body, tt.wantType, resp.Type)
		}
	}
}

func TestNavigation(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)
	loadThreePages(t, h, id)

	var resp viewerResponse
	for i := 0; i < 3; i++ {
		rr := do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/next", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		resp = decodeViewer(t, rr)
	}
	if resp.Page != 3 {
		t.Fatalf("expected page 3 after three next calls, got %d", resp.Page)
	}

	rr := do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/previous", "")
	if resp = decodeViewer(t, rr); resp.Page != 2 {
		t.Fatalf("expected page 2, got %d", resp.Page)
	}

	rr = do(t, h, http.MethodPut, "/api/v1/viewers/"+id+"/page", `{"page":1}`)
	if resp = decodeViewer(t, rr); resp.Page != 1 {
		t.Fatalf("expected page 1, got %d", resp.Page)
	}
}

func TestSetPage_Errors(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)
	loadThreePages(t, h, id)

	rr := do(t, h, http.MethodPut, "/api/v1/viewers/"+id+"/page", `{"page":4}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if resp := decodeError(t, rr); resp.Type != "out_of_range" {
		t.Fatalf("expected out_of_range, got %s", resp.Type)
	}

	rr = do(t, h, http.MethodPut, "/api/v1/viewers/"+id+"/page", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for missing page, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestSetZoom(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)

	for _, tt := range []struct {
		body     string
		wantCode int
	}{
		{`{"zoom":1}`, http.StatusOK},
		{`{"zoom":5}`, http.StatusOK},
		{`{"zoom":0}`, http.StatusBadRequest},
		{`{"zoom":6}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	} {
		rr := do(t, h, http.MethodPut, "/api/v1/viewers/"+id+"/zoom", tt.body)
		if rr.Code != tt.wantCode {
			t.Fatalf("%s: expected status %d, got %d", tt.body, tt.wantCode, rr.Code)
		}
	}

	rr := do(t, h, http.MethodGet, "/api/v1/viewers/"+id, "")
	if resp := decodeViewer(t, rr); resp.Zoom != 5 {
		t.Fatalf("expected zoom to stay at 5, got %d", resp.Zoom)
	}
}

func TestSetPosition(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)

	rr := do(t, h, http.MethodPut, "/api/v1/viewers/"+id+"/position", `{"x":400,"y":-12}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if resp := decodeViewer(t, rr); resp.Position != image.Pt(400, -12) {
		t.Fatalf("unexpected position %v", resp.Position)
	}
}

func TestGetFrame(t *testing.T) {
	h, _ := newTestRouter()
	id := createViewer(t, h)

	rr := do(t, h, http.MethodGet, "/api/v1/viewers/"+id+"/frame.png", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get("X-Frame-Drawn") != "false" {
		t.Fatalf("expected empty frame before load")
	}

	loadThreePages(t, h, id)

	rr = do(t, h, http.MethodGet, "/api/v1/viewers/"+id+"/frame.png", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if rr.Header().Get("X-Frame-Drawn") != "true" {
		t.Fatalf("expected drawn frame")
	}
	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	if img.Bounds().Size() != image.Pt(8, 6) {
		t.Fatalf("expected 8x6 frame, got %v", img.Bounds())
	}
	if r, g, b, _ := img.At(7, 5).RGBA(); r>>8 != 0xc0 || g>>8 != 0x10 || b>>8 != 0x10 {
		t.Fatalf("unexpected pixel %v", img.At(7, 5))
	}

	etag := rr.Header().Get("ETag")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/viewers/"+id+"/frame.png", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	h.ServeHTTP(cached, req)
	if cached.Code != http.StatusNotModified {
		t.Fatalf("expected status %d, got %d", http.StatusNotModified, cached.Code)
	}

	do(t, h, http.MethodPost, "/api/v1/viewers/"+id+"/next", "")
	rr = do(t, h, http.MethodGet, "/api/v1/viewers/"+id+"/frame.png", "")
	if rr.Header().Get("ETag") == etag {
		t.Fatalf("expected a new etag after navigation")
	}
}

func TestDeleteViewer(t *testing.T) {
	h, svc := newTestRouter()
	id := createViewer(t, h)

	rr := do(t, h, http.MethodDelete, "/api/v1/viewers/"+id, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected viewer to be removed")
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/viewers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
