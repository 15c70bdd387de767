package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/archgram/archgram/internal/domain/render"
)

const defaultTimeout = 120 * time.Second

// Client calls an external diagram-rendering service over HTTP. The service
// accepts a finalized instruction set plus summary and replies with PNG bytes.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type renderRequest struct {
	Instructions string `json:"instructions"`
	Summary      string `json:"summary"`
	Format       string `json:"format"`
}

// Render performs a single attempt; retries are a caller-driven action.
func (c *Client) Render(ctx context.Context, instructions, summary string) ([]byte, error) {
	body, err := json.Marshal(renderRequest{
		Instructions: instructions,
		Summary:      summary,
		Format:       "png",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", render.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s", render.ErrBadInstructions, bytes.TrimSpace(msg))
	default:
		return nil, fmt.Errorf("%w: renderer returned status %d", render.ErrUnavailable, resp.StatusCode)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", render.ErrUnavailable, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: renderer returned an empty image", render.ErrUnavailable)
	}
	return img, nil
}
