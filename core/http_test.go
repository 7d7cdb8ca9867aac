package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMaxAgeHandler(t *testing.T) {
	h := MaxAgeHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	tests := []struct {
		path string
		want string
	}{
		{"/static/style.css", "max-age=86400"},
		{"/static/script.js", "max-age=86400"},
		{"/static/favicon.svg", "max-age=31536000, immutable"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if got := w.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServeWebManifest(t *testing.T) {
	mux := http.NewServeMux()
	ServeWebManifest(mux, `Compress "Image"`, "/", "#2575fc")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.webmanifest", nil))

	if got := w.Header().Get("Content-Type"); got != "application/manifest+json" {
		t.Errorf("Unexpected Content-Type %q", got)
	}
	var manifest struct {
		Name     string `json:"name"`
		StartURL string `json:"start_url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("Manifest is not valid JSON: %v\n%s", err, w.Body.String())
	}
	if manifest.Name != `Compress "Image"` || manifest.StartURL != "/" {
		t.Errorf("Unexpected manifest %+v", manifest)
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, http.StatusBadRequest, "No file part")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Unexpected Content-Type %q", got)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["error"] != "No file part" {
		t.Errorf("Unexpected body %v", body)
	}
}
