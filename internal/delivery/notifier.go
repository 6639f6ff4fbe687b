// Package delivery posts job outcomes to the downstream webhook. Delivery is
// best-effort: callers log failures but never let them change the job's own
// outcome.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"
)

const (
	// sourceTag identifies this service in outbound payloads.
	sourceTag = "reelsmith"

	// fileField is the multipart field name the webhook expects the final
	// video under.
	fileField = "edited_file_upload"

	// maxErrorLen caps error messages in failure notices.
	maxErrorLen = 800

	// maxResponseTail bounds webhook response bodies kept for logging.
	maxResponseTail = 4096
)

// DeliveryError reports a non-2xx webhook response.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook delivery failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// Notifier submits READY and FAILED outcomes. The primary webhook receives
// both; the legacy endpoint only receives failure notices, and only when no
// primary is configured.
type Notifier struct {
	webhookURL string
	legacyURL  string
	client     *http.Client
	logger     *slog.Logger
}

func NewNotifier(webhookURL, legacyURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		legacyURL:  legacyURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// DeliverReady posts the final artifact as a multipart attachment plus the
// job metadata.
func (n *Notifier) DeliverReady(ctx context.Context, videoID, titleHook, finalPath string) error {
	if n.webhookURL == "" {
		n.logger.Warn("no webhook configured, skipping result delivery", "video_id", videoID)
		return nil
	}

	f, err := os.Open(finalPath)
	if err != nil {
		return fmt.Errorf("open final artifact: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"video_id":   videoID,
		"status":     "READY",
		"title_hook": titleHook,
		"source":     sourceTag,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="final.mp4"`, fileField))
	hdr.Set("Content-Type", "video/mp4")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("attach final artifact: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	n.logger.Info("delivering final artifact",
		"video_id", videoID,
		"title_hook", titleHook,
		"body_bytes", body.Len(),
	)
	return n.post(req)
}

// DeliverFailed posts a metadata-only failure notice. The error message is
// truncated before it leaves the process.
func (n *Notifier) DeliverFailed(ctx context.Context, videoID, errMsg string) error {
	payload := map[string]string{
		"video_id":  videoID,
		"status":    "FAILED",
		"error_msg": Truncate(errMsg),
	}

	target := n.webhookURL
	if target != "" {
		payload["source"] = sourceTag
	} else {
		// Legacy JSON-only endpoint, used when no primary webhook is set.
		target = n.legacyURL
	}
	if target == "" {
		n.logger.Warn("no webhook configured, skipping failure notice", "video_id", videoID)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal failure notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create failure request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	n.logger.Info("delivering failure notice", "video_id", videoID)
	return n.post(req)
}

func (n *Notifier) post(req *http.Request) error {
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	tail, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseTail))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		n.logger.Debug("webhook accepted delivery", "status", resp.StatusCode)
		return nil
	}
	return &DeliveryError{StatusCode: resp.StatusCode, Body: string(tail)}
}

// Truncate caps an error message at the outbound limit.
func Truncate(msg string) string {
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen]
	}
	return msg
}
