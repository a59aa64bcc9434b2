package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grantley-gardens/tribunal-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dataset over a read-only HTTP API",
	Long:  "Loads the enriched dataset once at startup and serves stats and per-case lookups. Intended for local inspection and as a backend for the static site during development.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, _, err := newDatasetStore(cfg).Load()
		if err != nil {
			return err
		}

		byRef := make(map[string]*model.DecisionRecord, len(db.Decisions))
		for _, d := range db.Decisions {
			if d.CaseReference != "" {
				byRef[d.CaseReference] = d
			}
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"status":    "ok",
				"decisions": len(db.Decisions),
			})
		})

		r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, datasetStats(db))
		})

		// Case references contain slashes (e.g. LON/00AY/LSC/2024/0123), so
		// the lookup is a wildcard rather than a single path segment.
		r.Get("/api/decisions/*", func(w http.ResponseWriter, req *http.Request) {
			ref := chi.URLParam(req, "*")
			d, ok := byRef[ref]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown case reference"})
				return
			}
			writeJSON(w, http.StatusOK, d)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// datasetStats summarizes enrichment state for the stats endpoint.
func datasetStats(db *model.Database) map[string]any {
	withText := 0
	errored := 0
	bySource := map[string]int{}
	for _, d := range db.Decisions {
		if d.Text() != "" {
			withText++
			bySource[d.TextSource]++
		}
		if d.EnrichmentError {
			errored++
		}
	}
	return map[string]any{
		"total":             len(db.Decisions),
		"with_text":         withText,
		"text_sources":      bySource,
		"enrichment_errors": errored,
		"metadata":          db.Metadata,
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
