// Command callcore-demo wires internal/callcore's admission-controlled
// call core to a real SIP/RTP back end via internal/sipvoip: build the
// transport layers bottom-up (media pool, SIP adapter, core, API
// server), wire callbacks, start listeners, wait for a signal, tear
// down top-down.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebas/callcore/internal/banner"
	"github.com/sebas/callcore/internal/callcore"
	demoapi "github.com/sebas/callcore/internal/callcoredemo/api"
	"github.com/sebas/callcore/internal/callcoredemo/campaign"
	"github.com/sebas/callcore/internal/callcoredemo/config"
	"github.com/sebas/callcore/internal/callcoredemo/events"
	"github.com/sebas/callcore/internal/callcoredemo/media"
	"github.com/sebas/callcore/internal/logger"
	"github.com/sebas/callcore/internal/mediaclient"
	"github.com/sebas/callcore/internal/sipvoip"
)

// statsAdapter exposes callcore.Core's Stats() through the shape
// internal/callcoredemo/api.StatsProvider expects.
type statsAdapter struct{ core *callcore.Core }

func (s statsAdapter) Stats() demoapi.Stats {
	active, pending := s.core.Stats()
	return demoapi.Stats{ActiveCalls: active, PendingQueued: pending}
}

// loggingApp delivers every callcore.CallbackMessage to an
// events.Builder trace and to the process logger. It is the application
// side of VoipSink/AppCallback that a real caller (an IVR, a dialer UI)
// would replace with its own business logic.
type loggingApp struct {
	logger  *slog.Logger
	builder *events.Builder
}

func (a *loggingApp) Deliver(msg callcore.CallbackMessage) {
	callID := callIDOf(msg)
	a.builder.Observe(a.logger, callID, msg)
}

func callIDOf(msg callcore.CallbackMessage) uint32 {
	switch m := msg.(type) {
	case callcore.InitiateCallResponse:
		return m.CallID
	case callcore.Dialing:
		return m.CallID
	case callcore.Ringing:
		return m.CallID
	case callcore.Connected:
		return m.CallID
	case callcore.Failed:
		return m.CallID
	case callcore.ConnectionLost:
		return m.CallID
	case callcore.DtmfTone:
		return m.CallID
	case callcore.CallDuration:
		return m.CallID
	case callcore.ProtocolError:
		return m.CallID
	default:
		return 0
	}
}

func main() {
	logger.InitLogger(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Demo] invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	banner.Print("CALLCORE DEMO", []banner.ConfigLine{
		{Label: "SIP Port", Value: fmt.Sprintf("%d", cfg.Port)},
		{Label: "Advertise", Value: cfg.AdvertiseAddr},
		{Label: "Gateway", Value: cfg.Gateway},
		{Label: "Max Active Calls", Value: fmt.Sprintf("%d", cfg.Core.MaxActiveCalls)},
		{Label: "RTP Managers", Value: fmt.Sprintf("%v", cfg.RTPManagerAddrs)},
		{Label: "API Addr", Value: cfg.APIAddr},
	})

	poolCfg := mediaclient.DefaultPoolConfig()
	poolCfg.Addresses = cfg.RTPManagerAddrs
	poolCfg.HealthCheckInterval = 5 * time.Second
	mediaPool, err := mediaclient.NewPool(poolCfg)
	if err != nil {
		slog.Error("[Demo] failed to connect to media node pool", "error", err)
		os.Exit(1)
	}
	defer mediaPool.Close()

	player := media.NewPlayer(slog.Default(), mediaPool, nil)

	adapter, err := sipvoip.NewAdapter(slog.Default(), sipvoip.Config{
		BindAddr:         cfg.BindAddr,
		AdvertiseAddr:    cfg.AdvertiseAddr,
		Port:             cfg.Port,
		LocalUser:        cfg.LocalUser,
		Gateway:          cfg.Gateway,
		DialTimeout:      cfg.DialTimeout,
		DurationInterval: cfg.DurationInterval,
	}, mediaPool, player)
	if err != nil {
		slog.Error("[Demo] failed to build SIP adapter", "error", err)
		os.Exit(1)
	}
	defer adapter.Close()
	sipvoip.InstallLogBridge(slog.Default())

	if err := adapter.Serve(); err != nil {
		slog.Error("[Demo] failed to start SIP listener", "error", err)
		os.Exit(1)
	}

	core := callcore.NewCore(slog.Default())
	tracer := &loggingApp{logger: slog.Default(), builder: events.NewBuilder(cfg.AdvertiseAddr)}
	runner := campaign.NewRunner(slog.Default(), core, tracer, cfg.MaxPlayouts)
	adapter.Bind(core.Notify)

	if err := core.Init(cfg.Core, adapter, runner); err != nil {
		slog.Error("[Demo] failed to initialize core", "error", err)
		os.Exit(1)
	}
	defer core.Shutdown()

	apiServer := demoapi.NewServer(slog.Default(), cfg.APIAddr, statsAdapter{core: core})
	if err := apiServer.Start(); err != nil {
		slog.Error("[Demo] failed to start API server", "error", err)
		os.Exit(1)
	}
	defer apiServer.Stop()

	slog.Info("[Demo] callcore-demo ready", "advertise", cfg.AdvertiseAddr, "port", cfg.Port)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(cfg.DialParties) > 0 {
		go func() {
			slog.Info("[Demo] starting campaign", "parties", cfg.DialParties, "file", cfg.PlayFile)
			if err := runner.Run(ctx, cfg.DialParties, cfg.PlayFile); err != nil {
				slog.Error("[Demo] campaign ended with error", "error", err)
			} else {
				slog.Info("[Demo] campaign complete")
			}
		}()
	}

	<-ctx.Done()
	slog.Info("[Demo] shutting down")
}
