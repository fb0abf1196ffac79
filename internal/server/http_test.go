package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ironsheep/spot-analyzer/internal/imaging"
	"github.com/ironsheep/spot-analyzer/internal/spots"
)

// uploadRequest builds a POST /analisar request carrying data in field.
func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analisar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %q", rec.Body.String())
	}
	return body.Error
}

func TestHTTP_Status(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var body StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Message != "Image analysis API is online" {
		t.Errorf("mensagem: got %q", body.Message)
	}
}

func TestHTTP_Analyze(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, uploadRequest(t, "foto", "photo.png", encodePNG(t, spotImage())))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	for _, key := range []string{"arquivo", "percentual_manchas", "num_manchas", "mensagem", "spots", "annotated_image", "annotated_url"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}

	var body AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.File != "photo.png" {
		t.Errorf("arquivo: got %q", body.File)
	}
	if body.Count != 1 || len(body.Spots) != 1 {
		t.Fatalf("num_manchas: got %d (%v), want 1", body.Count, body.Spots)
	}
	if body.Coverage < 3.0 || body.Coverage > 4.2 {
		t.Errorf("percentual_manchas %.2f outside [3.0, 4.2]", body.Coverage)
	}
	if body.Message != spots.MessageClean {
		t.Errorf("mensagem: got %q", body.Message)
	}
	if body.AnnotatedURL != imaging.URLPrefix+body.AnnotatedImage {
		t.Errorf("annotated_url: got %q for %q", body.AnnotatedURL, body.AnnotatedImage)
	}

	// The annotated image is served back from the store.
	img := serve(s, httptest.NewRequest(http.MethodGet, body.AnnotatedURL, nil))
	if img.Code != http.StatusOK {
		t.Fatalf("GET %s: status %d", body.AnnotatedURL, img.Code)
	}
	if ct := img.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("annotated Content-Type: got %q", ct)
	}
	if _, err := imaging.DecodeBytes(img.Body.Bytes()); err != nil {
		t.Errorf("annotated image does not decode: %v", err)
	}
}

func TestHTTP_AnalyzeTransparentPNG(t *testing.T) {
	s := newTestServer(t)

	// Stored white everywhere; only the left half is opaque.
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			a := uint8(0)
			if x < 50 {
				a = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, a})
		}
	}

	rec := serve(s, uploadRequest(t, "foto", "logo.png", encodePNG(t, img)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var body AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Count != 0 || body.Coverage != 0 {
		t.Errorf("got %d spots at %.2f%%, want none", body.Count, body.Coverage)
	}
	if body.Message != spots.MessageClean {
		t.Errorf("mensagem: got %q", body.Message)
	}
}

func TestHTTP_AnalyzeInvalidImage(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, uploadRequest(t, "foto", "notes.txt", []byte("definitely not an image")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); got != "Invalid image or unsupported format." {
		t.Errorf("erro: got %q", got)
	}
}

func TestHTTP_AnalyzeEmptyUpload(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, uploadRequest(t, "foto", "empty.jpg", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); got != "Invalid image or unsupported format." {
		t.Errorf("erro: got %q", got)
	}
}

func TestHTTP_AnalyzeMissingField(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, uploadRequest(t, "image", "photo.png", encodePNG(t, spotImage())))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); !strings.Contains(got, "foto") {
		t.Errorf("erro does not name the field: %q", got)
	}
}

func TestHTTP_AnalyzeNotMultipart(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/analisar", strings.NewReader(`{"foto":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(s, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestHTTP_AnalyzeTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.MaxUploadMB = 1

	rec := serve(s, uploadRequest(t, "foto", "big.png", make([]byte, 2<<20)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d, want 413", rec.Code)
	}
}

func TestHTTP_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"missing annotated image", http.MethodGet, "/imagens/annot_missing.jpg", http.StatusNotFound},
		{"unknown path", http.MethodGet, "/nowhere", http.StatusNotFound},
		{"analyze needs POST", http.MethodGet, "/analisar", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRecoverPanics(t *testing.T) {
	s := newTestServer(t)
	h := s.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got != "boom" {
		t.Errorf("erro: got %q", got)
	}
}
