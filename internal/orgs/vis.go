package orgs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// VIS is the entitlement adapter for the VIS membership service.
type VIS struct {
	client  *http.Client
	baseURL string
	key     string
	log     *slog.Logger
}

// NewVIS returns a VIS adapter against baseURL, authenticated with key.
func NewVIS(baseURL, key string, timeout time.Duration, log *slog.Logger) *VIS {
	return &VIS{client: &http.Client{Timeout: timeout}, baseURL: baseURL, key: key, log: log}
}

func (v *VIS) Name() string { return "VIS" }

func (v *VIS) endpoint(route, card string) string {
	return fmt.Sprintf("%s/coffee/%s/%s?key=%s", v.baseURL, route, card, v.key)
}

// GetStatus reports whether the card holder has a positive beer balance.
func (v *VIS) GetStatus(ctx context.Context, card string) (bool, error) {
	var status struct {
		Beer int `json:"beer"`
	}
	if err := v.getJSON(ctx, v.endpoint("status", card), &status); err != nil {
		return false, err
	}
	return status.Beer > 0, nil
}

// ReportDispensed records a dispense against the card holder's balance.
func (v *VIS) ReportDispensed(ctx context.Context, card string, item uint64) error {
	v.log.Info("reporting dispense", "org", v.Name(), "card", card, "item", item)
	return v.getJSON(ctx, v.endpoint("dispensed", card), nil)
}

func (v *VIS) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "vis: building request")
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "vis: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("vis: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "vis: decoding response")
}
