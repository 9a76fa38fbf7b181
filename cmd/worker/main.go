package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mishmeshmosh/backend/internal/config"
	"github.com/mishmeshmosh/backend/internal/db"
	"github.com/mishmeshmosh/backend/internal/deeddoc"
	"github.com/mishmeshmosh/backend/internal/events"
	"github.com/mishmeshmosh/backend/internal/models"
	"github.com/mishmeshmosh/backend/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	deedRepo := repositories.NewDeedRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)

	log.Info("worker started")

	reminderTicker := time.NewTicker(5 * time.Minute)
	orphanTicker := time.NewTicker(10 * time.Minute)
	hashTicker := time.NewTicker(time.Duration(cfg.HashSweepIntervalSeconds) * time.Second)
	defer reminderTicker.Stop()
	defer orphanTicker.Stop()
	defer hashTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-reminderTicker.C:
			runSignerReminders(ctx, deedRepo, userRepo, publisher, cfg, log)
		case <-orphanTicker.C:
			runOrphanDraftSweep(ctx, deedRepo, auditRepo, cfg, log)
		case <-hashTicker.C:
			runHashSpotCheck(ctx, deedRepo, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runSignerReminders nudges signers who were invited to an assignment deed
// and have not signed within the reminder window.
func runSignerReminders(ctx context.Context, deedRepo *repositories.DeedRepo, userRepo *repositories.UserRepo, publisher events.Publisher, cfg *config.Config, log *zap.Logger) {
	signers, err := deedRepo.ListStaleInvitedSigners(ctx, cfg.SignerReminderSeconds)
	if err != nil {
		log.Error("failed to list stale invited signers", zap.Error(err))
		return
	}

	for _, s := range signers {
		user, err := userRepo.GetByID(ctx, s.UserID)
		if err != nil {
			continue
		}

		log.Info("sending signature reminder",
			zap.String("deed_id", s.DeedID.String()),
			zap.String("user_id", s.UserID.String()),
		)
		_ = publisher.Publish(ctx, events.StreamNotifications, events.Event{
			Type: events.EventNotification,
			Payload: map[string]any{
				"user_id": s.UserID.String(),
				"email":   user.Email,
				"subject": "Signature pending",
				"text":    "A deed is waiting for your signature.",
				"deed_id": s.DeedID.String(),
			},
		})
	}
}

// runOrphanDraftSweep flags assignment deeds that have sat in draft past the
// orphan window. They are not auto-cancelled; staff decide what to do.
func runOrphanDraftSweep(ctx context.Context, deedRepo *repositories.DeedRepo, auditRepo *repositories.AuditRepo, cfg *config.Config, log *zap.Logger) {
	deeds, err := deedRepo.ListOrphanDraftAssignmentDeeds(ctx, cfg.OrphanDraftSeconds)
	if err != nil {
		log.Error("failed to list orphan draft deeds", zap.Error(err))
		return
	}

	for _, deed := range deeds {
		deedID := deed.ID
		log.Warn("assignment deed stuck in draft",
			zap.String("deed_id", deedID.String()),
			zap.Time("created_at", deed.CreatedAt),
		)
		_ = auditRepo.Log(ctx, models.AuditLog{
			ActorType:  "system",
			Action:     "deed_draft_stale",
			EntityType: "deed",
			EntityID:   &deedID,
			Meta:       map[string]any{"created_at": deed.CreatedAt.Format(time.RFC3339)},
		})
	}
}

// runHashSpotCheck re-verifies the content hash of recently written deeds.
// A mismatch means the stored document was mutated after issuance.
func runHashSpotCheck(ctx context.Context, deedRepo *repositories.DeedRepo, log *zap.Logger) {
	deeds, err := deedRepo.ListRecentDeeds(ctx, 100)
	if err != nil {
		log.Error("failed to list recent deeds", zap.Error(err))
		return
	}

	var mismatches int
	for _, deed := range deeds {
		match, computed, err := deeddoc.Verify(deed.DeedKind, deed.DocJSON, deed.DocHash)
		if err != nil {
			log.Warn("hash check failed", zap.String("deed_id", deed.ID.String()), zap.Error(err))
			continue
		}
		if !match {
			mismatches++
			log.Error("deed document hash mismatch",
				zap.String("deed_id", deed.ID.String()),
				zap.String("stored_hash", deed.DocHash),
				zap.String("computed_hash", computed),
			)
		}
	}

	log.Info("hash sweep complete", zap.Int("checked", len(deeds)), zap.Int("mismatches", mismatches))
}
