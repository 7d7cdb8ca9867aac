package embedfs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServeStaticFS(t *testing.T) {
	mux := http.NewServeMux()
	ServeStaticFS(mux)

	tests := []struct {
		path        string
		contentType string
		cache       string
	}{
		{"/static/style.css", "text/css", "max-age=86400"},
		{"/static/script.js", "javascript", "max-age=86400"},
		{"/static/favicon.svg", "image/svg+xml", "max-age=31536000, immutable"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if got := w.Header().Get("Content-Type"); !strings.Contains(got, tt.contentType) {
				t.Errorf("Expected Content-Type containing %q, got %q", tt.contentType, got)
			}
			if got := w.Header().Get("Cache-Control"); got != tt.cache {
				t.Errorf("Expected Cache-Control %q, got %q", tt.cache, got)
			}
		})
	}
}

func TestFavicon(t *testing.T) {
	mux := http.NewServeMux()
	ServeStaticFS(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Error("Expected the SVG favicon")
	}
}

func TestStaticMissing(t *testing.T) {
	mux := http.NewServeMux()
	ServeStaticFS(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/nope.txt", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
