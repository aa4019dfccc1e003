package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gsign/internal/blobstore"
	"gsign/internal/config"
	"gsign/internal/content"
	"gsign/internal/document"
	"gsign/internal/pipeline"
	"gsign/internal/server"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the confirmation flow server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if err := cfg.ValidateForServe(); err != nil {
				return err
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.ListenAddr)
			if err != nil {
				return err
			}

			store, err := blobstore.NewRemote(cfg.BlobBaseURL, cfg.BlobToken, time.Duration(cfg.BlobTimeoutSeconds)*time.Second)
			if err != nil {
				return err
			}

			engine, err := document.NewEngine(cfg.FontPath)
			if err != nil {
				return err
			}

			clauses := make([]document.Clause, 0, len(content.Clauses()))
			for _, c := range content.Clauses() {
				clauses = append(clauses, document.Clause{Num: c.Num, Text: c.Text})
			}

			p := pipeline.New(store, engine, clauses, content.Japanese().FinalConfirmation, pipeline.Options{
				Logger: slog.Default().With("component", "pipeline"),
			})

			srv := server.New(addr, cfg.SecretToken, p, logger)
			return srv.ListenAndServe()
		},
	}
}
