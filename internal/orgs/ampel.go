package orgs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Ampel probes the building's traffic light. Green and yellow both permit
// dispensing; red, or any request failure, does not.
type Ampel struct {
	client *http.Client
	url    string
	log    *slog.Logger
}

// NewAmpel returns an ampel probe that GETs host+suffix.
func NewAmpel(host, suffix string, timeout time.Duration, log *slog.Logger) *Ampel {
	return &Ampel{
		client: &http.Client{Timeout: timeout},
		url:    "https://" + host + suffix,
		log:    log,
	}
}

// GetStatus reports whether the ampel currently permits dispensing. A
// request or parse failure is treated as "no", not propagated, matching the
// original probe's behavior.
func (a *Ampel) GetStatus(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return false, errors.Wrap(err, "ampel: building request")
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn("ampel request failed", "error", err)
		return false, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.log.Warn("ampel response unreadable", "error", err)
		return false, nil
	}
	result := strings.ToLower(strings.TrimSpace(string(body)))
	a.log.Debug("ampel result", "result", result)
	return result == "green" || result == "yellow", nil
}
