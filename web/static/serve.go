package static

import (
	"embed"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

//go:embed reload.js
var assets embed.FS

// ReloadScript returns a handler serving the embedded live-reload client.
func ReloadScript() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := assets.ReadFile("reload.js")
		if err != nil {
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write(data)
	})
}

// Options configures a Handler.
type Options struct {
	// IndexRewrite replaces a request for exactly "/".
	IndexRewrite string
	// MimeOverrides maps an extension to the content type sent for it,
	// ahead of the system MIME table.
	MimeOverrides map[string]string
}

// Handler serves files from a root with index rewriting and content type
// overrides. Anything it does not special-case is left to http.FileServer.
type Handler struct {
	root http.FileSystem
	opts Options
	next http.Handler
}

// FileServer returns a handler that serves HTTP requests with the contents of root.
func FileServer(root http.FileSystem, opts Options) *Handler {
	if opts.IndexRewrite == "" {
		opts.IndexRewrite = "/index.html"
	}
	if !strings.HasPrefix(opts.IndexRewrite, "/") {
		opts.IndexRewrite = "/" + opts.IndexRewrite
	}
	return &Handler{
		root: root,
		opts: opts,
		next: http.FileServer(root),
	}
}

// ContentType returns the content type for name, or "" when neither the
// overrides nor the system table know the extension.
func (h *Handler) ContentType(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	if typ, ok := h.opts.MimeOverrides[ext]; ok {
		return typ
	}
	return mime.TypeByExtension(ext)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	if containsDotDot(upath) {
		http.Error(w, "invalid URL path", http.StatusBadRequest)
		return
	}
	if upath == "/" {
		upath = h.opts.IndexRewrite
	}

	name := path.Clean(upath)
	f, err := h.root.Open(name)
	if err != nil {
		msg, code := toHTTPError(err)
		http.Error(w, msg, code)
		return
	}
	defer f.Close()

	d, err := f.Stat()
	if err != nil {
		msg, code := toHTTPError(err)
		http.Error(w, msg, code)
		return
	}

	if !d.IsDir() && strings.HasSuffix(upath, "/") {
		// http.FileServer redirects "/app.js/" to "../app.js".
		h.next.ServeHTTP(w, r)
		return
	}

	if d.IsDir() {
		if !strings.HasSuffix(upath, "/") {
			h.next.ServeHTTP(w, r)
			return
		}
		index := path.Join(name, "index.html")
		ff, err := h.root.Open(index)
		if err != nil {
			h.next.ServeHTTP(w, r)
			return
		}
		defer ff.Close()
		dd, err := ff.Stat()
		if err != nil || dd.IsDir() {
			h.next.ServeHTTP(w, r)
			return
		}
		name, f, d = index, ff, dd
	}

	if typ := h.ContentType(name); typ != "" {
		w.Header().Set("Content-Type", typ)
	}
	http.ServeContent(w, r, d.Name(), d.ModTime(), f)
}

func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, ent := range strings.FieldsFunc(v, isSlashRune) {
		if ent == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }

func toHTTPError(err error) (msg string, httpStatus int) {
	if errors.Is(err, fs.ErrNotExist) {
		return "404 page not found", http.StatusNotFound
	}
	if errors.Is(err, fs.ErrPermission) {
		return "403 Forbidden", http.StatusForbidden
	}
	return "500 Internal Server Error", http.StatusInternalServerError
}
