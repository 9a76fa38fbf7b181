package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NotifyClient communicates with the external notification service over its
// internal HTTP API. Delivery is best effort; callers never fail a workflow
// on a notification error.
type NotifyClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewNotifyClient(baseURL string, log *zap.Logger) *NotifyClient {
	return &NotifyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type NotificationRequest struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	DeedID  string `json:"deed_id,omitempty"`
}

func (c *NotifyClient) Send(ctx context.Context, req NotificationRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/internal/notify", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("failed to send notification", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		c.log.Warn("notification service returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(b)),
		)
	}
	return nil
}
