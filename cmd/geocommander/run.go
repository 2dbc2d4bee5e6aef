package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Epawse/geocommander/internal/config"
	"github.com/Epawse/geocommander/internal/conn"
	"github.com/Epawse/geocommander/internal/dispatch"
	"github.com/Epawse/geocommander/internal/logging"
	"github.com/Epawse/geocommander/internal/scene"
	"github.com/Epawse/geocommander/internal/store"
)

// runCmd starts the scene client against the controller
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the controller and execute scene actions",
	Long: `Starts the scene client: dials the controller websocket, keeps the
link alive with heartbeats and exponential-backoff reconnects, and
executes every action the controller sends against the scene.

The simulated scene backend is used unless a real viewer attaches.`,
	RunE: runClient,
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}

	logging.Configure(logging.Settings{
		DebugMode:  cfg.Logging.DebugMode || verbose,
		Dir:        cfg.Logging.Dir,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	})
	defer logging.CloseAll()
	logging.Boot("geocommander %s starting, controller %s", Version, cfg.Server.URL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Scene and dispatcher
	sim := scene.NewSim()
	sim.FlightScale = 1

	dispatcher := dispatch.New()
	dispatcher.SetHomeView(homeView(cfg))
	dispatcher.Attach(sim)
	defer dispatcher.Destroy()

	// Action log
	if cfg.Store.Enabled {
		actionLog, err := store.Open(cfg.Store.Path)
		if err != nil {
			logger.Warn("action log disabled", zap.Error(err))
		} else {
			defer actionLog.Close()
			dispatcher.SetOnExecuted(func(rec dispatch.ExecRecord) {
				actionLog.Record(store.Entry{
					ID:        rec.ID,
					Action:    string(rec.Type),
					Success:   rec.Success,
					Error:     rec.Error,
					LatencyMs: rec.Duration.Milliseconds(),
					CreatedAt: rec.Time,
				})
			})
		}
	}

	// Connection manager
	transport, err := conn.NewWebSocketTransport(cfg.Server.URL)
	if err != nil {
		return err
	}
	mgr := conn.NewManager(transport, dispatcher, conn.Config{
		HeartbeatInterval:    cfg.Server.HeartbeatInterval,
		ReconnectBaseDelay:   cfg.Server.ReconnectBaseDelay,
		ReconnectMultiplier:  cfg.Server.ReconnectMultiplier,
		MaxReconnectAttempts: cfg.Server.MaxReconnectAttempts,
		DedupWindow:          cfg.Server.DedupWindow,
	})
	mgr.SetOnStatus(func(s conn.Status) {
		logger.Info("connection status", zap.String("status", string(s)))
	})
	mgr.SetOnChat(func(msg conn.ChatMessage) {
		fmt.Println(msg.Message)
		if msg.Thinking != "" {
			logger.Debug("assistant thinking", zap.String("thinking", msg.Thinking))
		}
	})

	// Live config reload retunes logging only; connection settings apply
	// on the next start.
	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		logging.Configure(logging.Settings{
			DebugMode:  next.Logging.DebugMode || verbose,
			Dir:        next.Logging.Dir,
			Level:      next.Logging.Level,
			Categories: next.Logging.Categories,
		})
	})
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("config watcher failed to start", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return connectWithRetry(gctx, mgr, cfg.Server)
	})
	g.Go(func() error {
		<-gctx.Done()
		mgr.Disconnect()
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logging.Boot("geocommander stopped")
	return nil
}

// homeView maps the scene config onto the reset_view destination.
func homeView(cfg *config.Config) dispatch.HomeView {
	return dispatch.HomeView{
		Destination: scene.Cartographic{
			Longitude: cfg.Scene.HomeLongitude,
			Latitude:  cfg.Scene.HomeLatitude,
			Altitude:  cfg.Scene.HomeAltitude,
		},
		Orientation: scene.Orientation{Pitch: cfg.Scene.HomePitch},
		Duration:    cfg.Scene.HomeDuration,
	}
}

// connectWithRetry applies the reconnect schedule to the initial dial as
// well, so launching before the controller is up still converges. Once
// connected the manager handles link loss itself.
func connectWithRetry(ctx context.Context, mgr *conn.Manager, sc config.ServerConfig) error {
	delay := sc.ReconnectBaseDelay
	for attempt := 1; ; attempt++ {
		err := mgr.Connect(ctx)
		if err == nil {
			return nil
		}
		if sc.MaxReconnectAttempts > 0 && attempt >= sc.MaxReconnectAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		logger.Warn("connect failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * sc.ReconnectMultiplier)
	}
}
