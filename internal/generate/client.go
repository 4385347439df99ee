package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AngelCh415/revpipe/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// StatusError is a non-2xx reply from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx: %d body=%s", e.Code, e.Body)
}

// postJSONWithRetry sends in as JSON and decodes the reply into out. 4xx
// replies other than 429 are not retried.
func postJSONWithRetry(ctx context.Context, c HTTPClient, b utils.Backoff, url string, header http.Header, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return b.Do(ctx, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return utils.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range header {
			req.Header[k] = v
		}
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			serr := &StatusError{Code: resp.StatusCode, Body: string(raw)}
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return utils.Permanent(serr)
			}
			return serr
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return utils.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}
