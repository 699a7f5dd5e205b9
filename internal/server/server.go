package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	uploadPath = "/upload"
	dataPrefix = "/data/"
	dataDir    = "data"
	indexFile  = "index.html"
)

// BuildInfo is reported by the health and metrics endpoints.
type BuildInfo struct {
	Version string
	Commit  string
}

type Config struct {
	Addr      string // e.g. "0.0.0.0:5000"
	AdminAddr string // empty disables the admin listener
	Root      string // server root for static files

	// Store holds uploads. When nil a DiskStore under Root/data is created.
	Store  Store
	Ledger Ledger
	DB     *sql.DB

	MaxUploadBytes int64 // 0 means no limit
	Build          BuildInfo
}

type Server struct {
	httpServer  *http.Server
	adminServer *http.Server

	root           string
	store          Store
	ledger         Ledger
	db             *sql.DB
	maxUploadBytes int64
	build          BuildInfo
}

// New builds the server. The uploads directory is created here when the
// default disk store is used, so it exists before the listener accepts.
func New(cfg Config) (*Server, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}

	store := cfg.Store
	if store == nil {
		ds, err := NewDiskStore(filepath.Join(cfg.Root, dataDir))
		if err != nil {
			return nil, fmt.Errorf("uploads dir: %w", err)
		}
		store = ds
	}

	s := &Server{
		root:           cfg.Root,
		store:          store,
		ledger:         cfg.Ledger,
		db:             cfg.DB,
		maxUploadBytes: cfg.MaxUploadBytes,
		build:          cfg.Build,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if cfg.AdminAddr != "" {
		s.adminServer = &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           s.AdminHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s, nil
}

// Handler returns the public handler wrapped in middleware:
// requestID -> logging -> dispatcher.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = http.HandlerFunc(s.dispatch)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

// dispatch picks exactly one of upload handling or static serving.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && requestPath(r) == uploadPath {
		s.handleUpload(w, r)
		return
	}
	s.handleStatic(w, r)
}

// requestPath returns the path as the client sent it, percent-escapes left in
// place, without the query. Absolute-form targets and requests built without a
// RequestURI fall back to the escaped URL path.
func requestPath(r *http.Request) string {
	p := r.RequestURI
	if !strings.HasPrefix(p, "/") {
		return r.URL.EscapedPath()
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p
}

func (s *Server) Start() error {
	if s.adminServer != nil {
		adminLn, err := net.Listen("tcp", s.adminServer.Addr)
		if err != nil {
			return err
		}
		go func() {
			Info("admin listener started", map[string]any{"addr": s.adminServer.Addr})
			if err := s.adminServer.Serve(adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Error("admin listener stopped", nil, err)
			}
		}()
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	var adminErr error
	if s.adminServer != nil {
		adminErr = s.adminServer.Shutdown(ctx)
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return adminErr
}
