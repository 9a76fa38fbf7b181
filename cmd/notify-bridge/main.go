package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mishmeshmosh/backend/internal/config"
	"github.com/mishmeshmosh/backend/internal/db"
	"github.com/mishmeshmosh/backend/internal/events"
	"github.com/mishmeshmosh/backend/internal/services"
	"go.uber.org/zap"
)

// Notify Bridge — small service that subscribes to Redis notification
// events and forwards them to the external notification service.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)
	notifyClient := services.NewNotifyClient(cfg.NotifyInternalURL, log)

	log.Info("notify-bridge started")

	_ = subscriber.Subscribe(ctx, events.StreamNotifications, func(event events.Event) {
		log.Info("forwarding notification", zap.String("type", event.Type))
		forward(ctx, notifyClient, event, log)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}

func forward(ctx context.Context, client *services.NotifyClient, event events.Event, log *zap.Logger) {
	userID, _ := event.Payload["user_id"].(string)
	if userID == "" {
		return
	}

	email, _ := event.Payload["email"].(string)
	subject, _ := event.Payload["subject"].(string)
	text, _ := event.Payload["text"].(string)
	deedID, _ := event.Payload["deed_id"].(string)
	if subject == "" {
		subject = event.Type
	}

	if err := client.Send(ctx, services.NotificationRequest{
		UserID:  userID,
		Email:   email,
		Subject: subject,
		Text:    text,
		DeedID:  deedID,
	}); err != nil {
		log.Warn("failed to forward notification", zap.Error(err))
	}
}
