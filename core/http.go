package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
)

// MaxAgeHandler wraps an HTTP handler to set cache control headers based on file extension.
// CSS & JS files are cached for 1 day; all other static files for 1 year.
func MaxAgeHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch filepath.Ext(req.URL.Path) {
		case ".css", ".js":
			w.Header().Set("Cache-Control", "max-age=86400") // 1 day
		default:
			w.Header().Set("Cache-Control", "max-age=31536000, immutable") // 1 year
		}
		h.ServeHTTP(w, req)
	})
}

var appWebManifestTemplate = `{
  "name": "%s",
  "start_url": "%s",
  "theme_color": "%s",
  "display": "standalone",
  "icons": [{
    "src": "/static/favicon.svg",
    "type": "image/svg+xml",
    "sizes": "144x144"
  }]
}`

func ServeWebManifest(mux *http.ServeMux, appName, url, themeColor string) {
	name, _ := json.Marshal(appName)
	name = name[1 : len(name)-1]
	mux.HandleFunc("GET /app.webmanifest", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		var dst bytes.Buffer
		json.Compact(&dst, fmt.Appendf(nil, appWebManifestTemplate, name, url, themeColor))
		w.Write(dst.Bytes())
	})
}

// WriteJSON serializes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(buf)
	return err
}

// WriteJSONError responds with {"error": msg}.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
