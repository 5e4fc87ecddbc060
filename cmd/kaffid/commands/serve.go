package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/worxli/kaffi/byteio"
	"github.com/worxli/kaffi/internal/alert"
	"github.com/worxli/kaffi/internal/auth"
	"github.com/worxli/kaffi/internal/config"
	"github.com/worxli/kaffi/internal/eventlog"
	kaffimetrics "github.com/worxli/kaffi/internal/metrics"
	"github.com/worxli/kaffi/internal/mdb"
	"github.com/worxli/kaffi/internal/orgs"
	"github.com/worxli/kaffi/internal/rfid"
)

// shutdownTimeout bounds how long the metrics HTTP server is given to drain
// on shutdown.
const shutdownTimeout = 5 * time.Second

// dialTimeout is passed to byteio.Open for the MDB and RFID links: it bounds
// a tcp/udp dial and is the per-read timeout of each link.
const dialTimeout = 2 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the kaffid daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logLevel := new(slog.LevelVar)
			logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
			log := newLogger(cfg.Log, logLevel)

			log.Info("kaffid starting", "mdb_dial", cfg.MDB.Dial, "legi_dial", cfg.Legi.Dial)

			return run(cfg, log)
		},
	}
}

func newLogger(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	collector := kaffimetrics.NewCollector(reg)

	mdbIO, err := byteio.Open(ctx, dialTimeout, cfg.MDB.Dial)
	if err != nil {
		return fmt.Errorf("open mdb link %s: %w", cfg.MDB.Dial, err)
	}
	defer mdbIO.Close()

	legiIO, err := byteio.Open(ctx, dialTimeout, cfg.Legi.Dial)
	if err != nil {
		return fmt.Errorf("open legi link %s: %w", cfg.Legi.Dial, err)
	}
	defer legiIO.Close()

	slot := mdb.NewSlot()

	tail := alert.NewTailBuffer(cfg.Alert.TailSize)
	alertLogHandler := slog.NewTextHandler(tailWriter{tail}, nil)
	log = slog.New(newMultiHandler(log.Handler(), alertLogHandler))

	fsm := mdb.New(slot, log.With("component", "mdb-fsm"))

	var alerter *alert.SMTPAlerter
	if cfg.Alert.SMTPAddr != "" {
		alerter = alert.NewSMTPAlerter(cfg.Alert.SMTPAddr, nil, cfg.Alert.From, cfg.Alert.To, "kaffid watchdog", tail, log)
	}
	watchdog := mdb.NewWatchdog(cfg.MDB.ResponseTimeout, func() {
		collector.IncWatchdogFired()
		if alerter != nil {
			alerter.Alert()
		}
	})
	defer watchdog.Stop()

	stream := byteio.NewStream(mdbIO)
	translator := mdb.NewTranslator(stream, fsm, watchdog, log.With("component", "mdb-translator"))

	cardSlot := auth.NewCardSlot()
	listener := rfid.New(legiIO, []byte{cfg.Legi.EnableByte}, cardSlot.Push, log.With("component", "rfid"))

	ampel := orgs.NewAmpel(cfg.Ampel.Host, cfg.Ampel.Suffix, cfg.Ampel.Timeout, log.With("component", "ampel"))
	orgList := buildOrgs(cfg, log)

	events := eventlog.New(log.With("component", "eventlog"))
	coordinator := auth.New(cardSlot, ampel, orgList, fsm, events, collector, log.With("component", "auth"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { slot.Run(gctx); return nil })
	g.Go(translator.Run)
	g.Go(listener.Run)
	g.Go(func() error { return coordinator.Run(gctx) })

	metricsSrv := newMetricsServer(cfg, reg)
	g.Go(func() error {
		log.Info("metrics server listening", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return shutdown(translator, listener, cardSlot, metricsSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("kaffid exited with error: %w", err)
	}
	log.Info("kaffid stopped")
	return nil
}

func buildOrgs(cfg *config.Config, log *slog.Logger) []auth.Org {
	var orgList []auth.Org
	if cfg.VIS.Enabled {
		orgList = append(orgList, orgs.NewVIS(cfg.VIS.BaseURL, cfg.VIS.Key, cfg.VIS.Timeout, log.With("org", "vis")))
	}
	if cfg.AMIV.Enabled {
		orgList = append(orgList, orgs.NewAMIV(cfg.AMIV.BaseURL, cfg.AMIV.APIKey, cfg.AMIV.Secret, cfg.AMIV.Timeout, log.With("org", "amiv")))
	}
	if cfg.VMP.Enabled {
		orgList = append(orgList, orgs.NewVMP(cfg.VMP.StatusURL, cfg.VMP.DispenseURL, cfg.VMP.Timeout, log.With("org", "vmp")))
	}
	return orgList
}

func newMetricsServer(cfg *config.Config, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func shutdown(translator *mdb.Translator, listener *rfid.Listener, cards *auth.CardSlot, metricsSrv *http.Server) error {
	translator.Stop()
	listener.Stop()
	cards.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
