// Command pulsectl inspects and manages the local survey state: the
// in-progress form, the submission archive and the completion markers.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aminulnv/Year-In-Review/internal/bootstrap"
	"github.com/aminulnv/Year-In-Review/internal/config"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

func main() {
	if err := newRootCmd(openApp).Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp wires the services from the environment the same way the server does.
func openApp(ctx context.Context) (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backends, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store := service.NewFormStore(service.FormStoreConfig{Storage: backends.Storage, Logger: logger})
	store.Load(ctx)
	archive := service.NewArchive(service.ArchiveConfig{
		Storage:    backends.Storage,
		MaxEntries: cfg.Submission.MaxArchived,
		Logger:     logger,
	})
	transformer := service.NewTransformer(service.TransformerConfig{})
	client := service.NewSheetsClient(service.SheetsClientConfig{
		Endpoint:   cfg.Sheets.EndpointURL,
		HTTPClient: &http.Client{Timeout: cfg.Sheets.Timeout},
		Logger:     logger,
	})

	return &app{
		store:       store,
		archive:     archive,
		transformer: transformer,
		submissions: service.NewSubmissionService(service.SubmissionServiceConfig{
			Store:           store,
			Archive:         archive,
			Transformer:     transformer,
			Submitter:       client,
			Markers:         backends.Storage,
			RequireComplete: cfg.Submission.RequireComplete,
			Logger:          logger,
		}),
		close: backends.Close,
	}, nil
}
