package static

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestHandler(t *testing.T, files map[string]string) *Handler {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return FileServer(http.Dir(dir), Options{
		IndexRewrite: "/index.html",
		MimeOverrides: map[string]string{
			".js":   "application/javascript",
			".html": "text/html",
			".css":  "text/css",
		},
	})
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestContentType(t *testing.T) {
	h := FileServer(http.Dir("."), Options{MimeOverrides: map[string]string{
		".js":   "application/javascript",
		".html": "text/html",
		".css":  "text/css",
	}})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "javascript", input: "/app.js", expected: "application/javascript"},
		{name: "minified javascript", input: "/vendor/lib.min.js", expected: "application/javascript"},
		{name: "html", input: "/index.html", expected: "text/html"},
		{name: "css", input: "/style.css", expected: "text/css"},
		{name: "png falls back to system table", input: "/logo.png", expected: "image/png"},
		{name: "no extension", input: "/Makefile", expected: ""},
		{name: "unknown extension", input: "/data.devserve-unknown", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ContentType(tt.input); got != tt.expected {
				t.Errorf("ContentType(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRootRewritesToIndex(t *testing.T) {
	h := newTestHandler(t, map[string]string{"index.html": "<html>hi</html>"})

	rootResp, rootBody := get(t, h, "/")
	indexResp, indexBody := get(t, h, "/index.html")

	if rootResp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rootResp.StatusCode)
	}
	if indexResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /index.html status = %d, want 200", indexResp.StatusCode)
	}
	if rootBody != "<html>hi</html>" {
		t.Errorf("GET / body = %q", rootBody)
	}
	if rootBody != indexBody {
		t.Errorf("bodies differ: / = %q, /index.html = %q", rootBody, indexBody)
	}
	for _, k := range []string{"Content-Type", "Content-Length", "Last-Modified"} {
		if rootResp.Header.Get(k) != indexResp.Header.Get(k) {
			t.Errorf("%s differs: / = %q, /index.html = %q", k, rootResp.Header.Get(k), indexResp.Header.Get(k))
		}
	}
	if got := rootResp.Header.Get("Content-Type"); got != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
}

func TestRootRewriteIgnoresQuery(t *testing.T) {
	h := newTestHandler(t, map[string]string{"index.html": "<html>hi</html>"})

	resp, body := get(t, h, "/?x=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /?x=1 status = %d, want 200", resp.StatusCode)
	}
	if body != "<html>hi</html>" {
		t.Errorf("GET /?x=1 body = %q", body)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
}

func TestCustomIndexRewrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "home.html"), []byte("home"), 0644); err != nil {
		t.Fatal(err)
	}
	h := FileServer(http.Dir(dir), Options{IndexRewrite: "home.html"})

	resp, body := get(t, h, "/")
	if resp.StatusCode != http.StatusOK || body != "home" {
		t.Errorf("GET / = %d %q, want 200 \"home\"", resp.StatusCode, body)
	}
}

func TestOverrideIgnoresContent(t *testing.T) {
	h := newTestHandler(t, map[string]string{
		"app.js":    "console.log(1)",
		"fake.css":  "<html>not css</html>",
		"page.html": "plain text really",
	})

	tests := []struct {
		path string
		want string
		body string
	}{
		{"/app.js", "application/javascript", "console.log(1)"},
		{"/fake.css", "text/css", "<html>not css</html>"},
		{"/page.html", "text/html", "plain text really"},
	}
	for _, tt := range tests {
		resp, body := get(t, h, tt.path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", tt.path, resp.StatusCode)
		}
		if got := resp.Header.Get("Content-Type"); got != tt.want {
			t.Errorf("GET %s Content-Type = %q, want %q", tt.path, got, tt.want)
		}
		if body != tt.body {
			t.Errorf("GET %s body = %q, want %q", tt.path, body, tt.body)
		}
	}
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(t, nil)

	for _, p := range []string{"/missing.txt", "/", "/missing.js"} {
		resp, _ := get(t, h, p)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", p, resp.StatusCode)
		}
	}
}

func TestDirectoryIndex(t *testing.T) {
	h := newTestHandler(t, map[string]string{
		"docs/index.html": "docs",
		"other/a.txt":     "a",
	})

	resp, body := get(t, h, "/docs/")
	if resp.StatusCode != http.StatusOK || body != "docs" {
		t.Errorf("GET /docs/ = %d %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/html" {
		t.Errorf("GET /docs/ Content-Type = %q, want text/html", got)
	}

	resp, _ = get(t, h, "/docs")
	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("GET /docs status = %d, want 301", resp.StatusCode)
	}

	resp, body = get(t, h, "/other/")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /other/ status = %d, want 200 listing", resp.StatusCode)
	}
	if !strings.Contains(body, "a.txt") {
		t.Errorf("directory listing missing a.txt: %q", body)
	}
}

func TestFileWithTrailingSlash(t *testing.T) {
	h := newTestHandler(t, map[string]string{
		"app.js":          "console.log(1)",
		"docs/index.html": "docs",
	})

	tests := []struct {
		path     string
		location string
	}{
		{"/app.js/", "../app.js"},
		{"/docs/index.html/", "../index.html"},
	}
	for _, tt := range tests {
		resp, body := get(t, h, tt.path)
		if resp.StatusCode != http.StatusMovedPermanently {
			t.Errorf("GET %s status = %d, want 301", tt.path, resp.StatusCode)
		}
		if got := resp.Header.Get("Location"); got != tt.location {
			t.Errorf("GET %s Location = %q, want %q", tt.path, got, tt.location)
		}
		if strings.Contains(body, "console.log") {
			t.Errorf("GET %s served file content: %q", tt.path, body)
		}
	}
}

func TestRejectsDotDot(t *testing.T) {
	h := newTestHandler(t, map[string]string{"index.html": "x"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../etc/passwd"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReloadScript(t *testing.T) {
	resp, body := get(t, ReloadScript(), "/__devserve/reload.js")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/javascript" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(body, "/__devserve/reload") {
		t.Errorf("script does not reference reload endpoint")
	}
}
