package auth

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"
)

// DefaultVendTimeout is the pre-claim bound passed to MDB.AllowOneAndWait.
const DefaultVendTimeout = 2 * time.Second

// Org is a membership service that can confirm a card's entitlement and
// record a successful dispense against it.
type Org interface {
	Name() string
	GetStatus(ctx context.Context, cardHex string) (bool, error)
	ReportDispensed(ctx context.Context, cardHex string, item uint64) error
}

// AmpelProbe reports whether the building's traffic light currently permits
// dispensing at all, independent of any individual card's entitlement.
type AmpelProbe interface {
	GetStatus(ctx context.Context) (bool, error)
}

// MDB is the subset of *mdb.FSM the coordinator needs.
type MDB interface {
	AllowOneAndWait(ctx context.Context, timeout time.Duration) (dispensed bool, item []byte)
}

// EventLogger records authorization outcomes for audit/ops visibility.
type EventLogger interface {
	LogEvent(eventType, message string)
}

// Metrics counts authorization outcomes.
type Metrics interface {
	DeniedAmpel()
	Denied()
	NotDispensed()
	Dispensed()
}

// Coordinator is the single-threaded authorization loop (T_auth): take a
// scanned card, check the ampel, check orgs in order, arm the MDB slot, and
// report the dispense to whichever org authorized it.
type Coordinator struct {
	cards   *CardSlot
	ampel   AmpelProbe
	orgs    []Org
	mdb     MDB
	events  EventLogger
	metrics Metrics
	log     *slog.Logger
	timeout time.Duration

	done chan struct{}
}

// New returns a coordinator ready to Run.
func New(cards *CardSlot, ampel AmpelProbe, orgs []Org, mdb MDB, events EventLogger, metrics Metrics, log *slog.Logger) *Coordinator {
	return &Coordinator{
		cards:   cards,
		ampel:   ampel,
		orgs:    orgs,
		mdb:     mdb,
		events:  events,
		metrics: metrics,
		log:     log,
		timeout: DefaultVendTimeout,
		done:    make(chan struct{}),
	}
}

// Run drains cards until the slot is closed or ctx is done. It must run on
// its own goroutine (T_auth).
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		card, ok := c.cards.Next()
		if !ok {
			return nil
		}
		c.handleCard(ctx, card)
	}
}

// Wait blocks until Run has returned.
func (c *Coordinator) Wait() { <-c.done }

func (c *Coordinator) handleCard(ctx context.Context, card string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic handling card", "panic", r, "card", card)
		}
	}()

	allowed, err := c.ampel.GetStatus(ctx)
	if err != nil {
		c.log.Warn("ampel probe failed, treating as not-green", "error", err)
		allowed = false
	}
	if !allowed {
		c.events.LogEvent("DENIED", "Ampel "+card)
		c.metrics.DeniedAmpel()
		return
	}

	var authorizedBy Org
	for _, org := range c.orgs {
		entitled, err := org.GetStatus(ctx, card)
		if err != nil {
			c.log.Error("org status check failed", "org", org.Name(), "card", card, "error", err)
			continue
		}
		if entitled {
			authorizedBy = org
			break
		}
	}
	if authorizedBy == nil {
		c.events.LogEvent("DENIED", card)
		c.metrics.Denied()
		return
	}

	dispensed, item := c.mdb.AllowOneAndWait(ctx, c.timeout)
	if !dispensed {
		c.metrics.NotDispensed()
		return
	}

	itemNumber := itemToUint(item)
	if err := authorizedBy.ReportDispensed(ctx, card, itemNumber); err != nil {
		c.log.Error("report dispensed failed", "org", authorizedBy.Name(), "card", card, "error", err)
	}
	c.events.LogEvent("DISPENSED", authorizedBy.Name()+" "+card)
	c.metrics.Dispensed()
}

// itemToUint interprets the MDB item-data bytes as a big-endian unsigned
// integer, by hex-encoding them and parsing the result as base 16 - the
// same transformation the original implementation applied before handing
// the item number to an org's dispense-report endpoint.
func itemToUint(item []byte) uint64 {
	if len(item) == 0 {
		return 0
	}
	n, _ := strconv.ParseUint(hex.EncodeToString(item), 16, 64)
	return n
}
