package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for extraction requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Set up routes
		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /extract", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Documents   []string `json:"documents"`
				EntityTypes []string `json:"entity_types"`
				Concurrency int      `json:"concurrency"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}

			if len(req.Documents) == 0 {
				http.Error(w, `{"error":"documents is required"}`, http.StatusBadRequest)
				return
			}

			set := model.EntityTypeSet(req.EntityTypes)
			if len(set) == 0 {
				set = resolveCatalog()
			}
			if err := set.Validate(); err != nil {
				http.Error(w, `{"error":"invalid entity_types"}`, http.StatusBadRequest)
				return
			}

			concurrency := req.Concurrency
			if concurrency <= 0 {
				concurrency = cfg.Batch.Concurrency
			}

			docs := make([]model.Document, len(req.Documents))
			for i, text := range req.Documents {
				docs[i] = model.Document{Index: i, Text: text}
			}

			results, err := env.Dispatcher.Run(r.Context(), docs, set, concurrency)
			if err != nil {
				if model.IsInvalidInput(err) {
					http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
					return
				}
				zap.L().Error("extraction request failed", zap.Error(err))
				http.Error(w, `{"error":"extraction failed"}`, http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{"results": results})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
