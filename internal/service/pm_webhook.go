package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LocationUpdatePayload is the JSON body pushed to the PM tool's
// location webhook on each non-throttled location event
type LocationUpdatePayload struct {
	Event               string             `json:"event"`
	TaskID              int64              `json:"task_id"`
	WorkerChatID        int64              `json:"worker_chat_id"`
	Location            LocationUpdateBody `json:"location"`
	TotalDistanceMeters float64            `json:"total_distance_meters"`
	TrackingStartedAt   *time.Time         `json:"tracking_started_at,omitempty"`
}

// LocationUpdateBody is the point section of a location webhook payload
type LocationUpdateBody struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookClient posts progress events to the external PM tool
type WebhookClient struct {
	http *http.Client
}

// NewWebhookClient creates a new PM webhook client
func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// PostLocationUpdate pushes one location update to the given webhook URL
func (c *WebhookClient) PostLocationUpdate(ctx context.Context, url string, payload LocationUpdatePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook http status: %s", resp.Status)
	}
	return nil
}
