package main

import (
	"context"
	"log/slog"
	"time"

	"textsummarizer/internal/client"
	"textsummarizer/internal/config"
	"textsummarizer/internal/controller"
	"textsummarizer/internal/database"
	"textsummarizer/internal/history"
	"textsummarizer/internal/mirror"
)

const mirrorDrainTimeout = 15 * time.Second

// session wires the client side: relay client, local history, mirror.
type session struct {
	cfg        config.ClientConfig
	db         *database.Database
	firestore  *mirror.FirestoreStore
	mirror     *mirror.Mirror
	controller *controller.Controller
	log        *slog.Logger
}

func openSession(ctx context.Context, log *slog.Logger) (*session, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load client config",
			"error", err)

		return nil, err
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return nil, err
	}

	s := &session{cfg: cfg, db: db, log: log}
	s.firestore = initMirrorStore(ctx, cfg, log)

	var store mirror.DocumentStore
	if s.firestore != nil {
		store = s.firestore
	}
	s.mirror = mirror.New(store, cfg.MirrorTimeout, log)

	cache := history.NewCache(db, log)
	relayClient := client.New(cfg.RelayURL, cfg.RelayTimeout)

	s.controller = controller.New(relayClient, cache, s.mirror, log,
		controller.WithWarmupRetries(cfg.WarmupRetries))

	return s, nil
}

// Close drains detached mirror writes and releases the stores.
func (s *session) Close(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorDrainTimeout)
	defer cancel()

	s.mirror.Wait(drainCtx)

	if s.firestore != nil {
		if err := s.firestore.Close(); err != nil {
			s.log.WarnContext(ctx, "Failed to close mirror client",
				"error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		s.log.ErrorContext(ctx, "Failed to close db",
			"error", err,
			"dbPath", s.cfg.DBPath)
	}
}

func initMirrorStore(ctx context.Context, cfg config.ClientConfig, log *slog.Logger) *mirror.FirestoreStore {
	if !cfg.MirrorEnabled() {
		log.InfoContext(ctx, "FIRESTORE_PROJECT_ID is missing so mirror is disabled",
			"envVar", "FIRESTORE_PROJECT_ID")

		return nil
	}

	store, err := mirror.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCollection)
	if err != nil {
		log.WarnContext(ctx, "Failed to create mirror client so mirror is disabled",
			"error", err,
			"projectID", cfg.FirestoreProjectID)

		return nil
	}

	log.InfoContext(ctx, "Mirror is initialized",
		"projectID", cfg.FirestoreProjectID,
		"collection", cfg.FirestoreCollection)

	return store
}
