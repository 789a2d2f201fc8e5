// AngelaMos | 2026
// captcha.go

package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/auth-backend/internal/config"
	"github.com/carterperez-dev/templates/auth-backend/internal/core"
)

// siteverifyResponse is the portion of the reCAPTCHA response we care about.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Client posts challenge responses to the scoring endpoint. All failure
// modes, including transport errors, reject the action (fail-closed).
type Client struct {
	secret    string
	verifyURL string
	threshold float64
	enabled   bool
	http      *http.Client
}

func NewClient(cfg config.CaptchaConfig) *Client {
	return &Client{
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		threshold: cfg.Threshold,
		enabled:   cfg.Enabled,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify checks the client-supplied challenge response for the given action.
// A score below the threshold fails regardless of the provider's own
// success flag.
func (c *Client) Verify(ctx context.Context, token, action string) error {
	if !c.enabled {
		return nil
	}

	if token == "" {
		return core.ExternalServiceError()
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.verifyURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("build captcha request: %w", core.ErrExternalService)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("captcha request: %w", core.ErrExternalService)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"captcha endpoint returned %d: %w",
			resp.StatusCode,
			core.ErrExternalService,
		)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode captcha response: %w", core.ErrExternalService)
	}

	if !result.Success || result.Score < c.threshold {
		return core.ExternalServiceError()
	}

	if result.Action != "" && action != "" && result.Action != action {
		return core.ExternalServiceError()
	}

	return nil
}
