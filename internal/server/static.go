package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// handleStatic serves files beneath the server root for any method. The path
// is used as sent: percent-escapes are not decoded, backslashes are turned
// into slashes and ".." segments are left to the path join.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := strings.ReplaceAll(requestPath(r), `\`, "/")

	var (
		name string
		body []byte
		err  error
	)
	switch {
	case p == "/":
		name = indexFile
		body, err = os.ReadFile(filepath.Join(s.root, indexFile))
	case strings.HasPrefix(p, dataPrefix):
		name = strings.TrimPrefix(p, dataPrefix)
		body, err = s.store.Get(r.Context(), name)
	default:
		name = strings.TrimPrefix(p, "/")
		body, err = os.ReadFile(filepath.Join(s.root, name))
	}

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			GetMetrics().RecordStaticNotFound()
			writePlain(w, http.StatusNotFound, "File not found")
			return
		}
		GetMetrics().RecordStaticError()
		Debug("static read failed", map[string]any{
			"rid":  RequestIDFromContext(r.Context()),
			"path": p,
			"err":  err.Error(),
		})
		writePlain(w, http.StatusInternalServerError, "Error: "+errorCode(err))
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)

	GetMetrics().RecordStatic(int64(len(body)), time.Since(start))
}

func writePlain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
