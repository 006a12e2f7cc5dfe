// Package delivery posts finished reports to the DebTrack server. Exactly
// one attempt per report: a delivery failure is the caller's to handle, the
// next full scan reconciles whatever was missed.
package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/debtrack/agent/internal/inventory"
	"github.com/debtrack/agent/internal/logging"
)

var log = logging.L("delivery")

// StatusError indicates the server rejected a report.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server rejected the report: %d %s", e.StatusCode, e.Body)
}

// Client talks to one DebTrack server.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for https://server:port. tlsConfig may carry the
// client certificate and may be nil.
func New(server string, port int, tlsConfig *tls.Config, timeout time.Duration) *Client {
	return &Client{
		baseURL: fmt.Sprintf("https://%s:%d", server, port),
		httpc: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
			},
		},
	}
}

// BaseURL returns the server base URL the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

// Send posts the report to /hosts/<hostname>/update. The server answers
// 201 Created on success; anything else is a *StatusError.
func (c *Client) Send(ctx context.Context, report *inventory.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	url := fmt.Sprintf("%s/hosts/%s/update", c.baseURL, report.Hostname)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send the report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	log.Info("report sent", "updateType", report.UpdateType, "records", len(report.Installed)+len(report.Uninstalled)+len(report.Upgradable))
	return nil
}
