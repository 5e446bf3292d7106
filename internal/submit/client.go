package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fee-desk/internal/config"
	"fee-desk/internal/logger"
	"fee-desk/internal/model"
	"fee-desk/pkg/errors"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 1 << 20

// Client posts submissions to the spreadsheet endpoint. The endpoint URL is
// fixed at construction; an empty URL makes every Submit fail.
type Client struct {
	endpointURL string
	httpClient  *http.Client
	log         zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return NewClientWithHTTP(cfg.Submission.EndpointURL, &http.Client{})
}

// NewClientWithHTTP leaves timeouts to the caller's context; the dispatcher
// applies one per call.
func NewClientWithHTTP(endpointURL string, httpClient *http.Client) *Client {
	return &Client{
		endpointURL: strings.TrimSpace(endpointURL),
		httpClient:  httpClient,
		log:         logger.Component("submit-client"),
	}
}

func (c *Client) Submit(ctx context.Context, item model.SubmissionItem) (*model.SubmitResponse, error) {
	if c.endpointURL == "" {
		return nil, errors.NewTransportError(errors.ErrEndpointNotConfigured, "cannot submit payment")
	}

	jsonData, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("item_id", item.ID).Msg("Sending submission to endpoint")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewTransportError(err, "failed to read response")
	}

	// The status field decides the outcome; the HTTP code only matters when
	// the body is not a usable reply.
	var submitResp model.SubmitResponse
	if err := json.Unmarshal(body, &submitResp); err != nil || submitResp.Status == "" {
		if err == nil {
			err = errors.ErrInvalidResponse
		}
		return nil, errors.NewTransportError(err,
			fmt.Sprintf("failed to decode response (HTTP %d)", resp.StatusCode))
	}

	c.log.Debug().
		Str("item_id", item.ID).
		Int("http_status", resp.StatusCode).
		Str("status", submitResp.Status).
		Msg("Endpoint replied")

	return &submitResp, nil
}
