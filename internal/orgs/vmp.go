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

// VMP is the entitlement adapter for the VMP membership service, whose
// endpoints are fixed PHP scripts taking rfidnr/slot_id query parameters
// rather than a REST path scheme.
type VMP struct {
	client      *http.Client
	statusURL   string
	dispenseURL string
	log         *slog.Logger
}

// NewVMP returns a VMP adapter against the given status/dispense endpoints.
func NewVMP(statusURL, dispenseURL string, timeout time.Duration, log *slog.Logger) *VMP {
	return &VMP{
		client:      &http.Client{Timeout: timeout},
		statusURL:   statusURL,
		dispenseURL: dispenseURL,
		log:         log,
	}
}

func (v *VMP) Name() string { return "VMP" }

// GetStatus reports whether the card holder is entitled per VMP's status
// script, which answers with {"allowed": true|false}.
func (v *VMP) GetStatus(ctx context.Context, card string) (bool, error) {
	url := fmt.Sprintf("%s?rfidnr=%s", v.statusURL, card)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errors.Wrap(err, "vmp: building request")
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "vmp: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("vmp: unexpected status %d", resp.StatusCode)
	}
	var status struct {
		Allowed bool `json:"allowed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, errors.Wrap(err, "vmp: decoding response")
	}
	return status.Allowed, nil
}

// ReportDispensed tells VMP's dispense script which slot was vended.
func (v *VMP) ReportDispensed(ctx context.Context, card string, item uint64) error {
	v.log.Info("reporting dispense", "org", v.Name(), "card", card, "slot", item)
	url := fmt.Sprintf("%s?rfidnr=%s&slot_id=%d", v.dispenseURL, card, item)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "vmp: building request")
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "vmp: request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("vmp: unexpected status %d", resp.StatusCode)
	}
	return nil
}
