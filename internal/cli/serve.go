package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
)

const (
	defaultAddr     = "127.0.0.1:8080"
	maxChartBytes   = 1 << 20
	maxAt           = time.Minute
	shutdownTimeout = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP endpoint that renders posted chart files",
		Long: `Serve listens on --addr. POST /render takes a chart file as the body
(YAML, or TOML with ?format=toml) and answers with the SVG captured at
?at= (default 2s) of virtual time. GET /layers lists the layer kinds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

func serve(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newRouter builds the HTTP routes of the render service.
func newRouter(logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n")) //nolint:errcheck
	})
	r.Get("/layers", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(canopy.LayerKinds()) //nolint:errcheck
	})
	r.Post("/render", renderHandler(logger))
	return r
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
				"bytes", ww.BytesWritten(), "took", time.Since(start).Round(time.Microsecond),
				"id", middleware.GetReqID(r.Context()))
		})
	}
}

func renderHandler(logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := config.FormatYAML
		if f := r.URL.Query().Get("format"); f != "" {
			format = config.Format(strings.ToLower(f))
		}
		at := defaultAt
		if s := r.URL.Query().Get("at"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil || d < 0 {
				http.Error(w, fmt.Sprintf("invalid at %q", s), http.StatusBadRequest)
				return
			}
			if d > maxAt {
				http.Error(w, fmt.Sprintf("at %s exceeds %s", d, maxAt), http.StatusBadRequest)
				return
			}
			at = d
		}

		cfg, err := config.Decode(http.MaxBytesReader(w, r.Body, maxChartBytes), format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var errs int
		c, doc, err := buildSVG(cfg, logger.With("request", middleware.GetReqID(r.Context())), &errs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		defer c.Destroy()
		c.Draw()
		advance(c, at)

		var buf bytes.Buffer
		if err := doc.Encode(&buf); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		if errs > 0 {
			w.Header().Set("X-Canopy-Errors", fmt.Sprint(errs))
		}
		w.Write(buf.Bytes()) //nolint:errcheck
	}
}
