package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"edgeagent/pkg/device"
	"edgeagent/pkg/deviceconfig"
	"edgeagent/pkg/logging"
)

// Application wires a device Agent, its health check, and the device
// configuration watcher into one runnable unit for the `edgeagent run`
// command.
//
// It follows a two-phase pattern:
//  1. Bootstrap: merge environment and flags, create the agent
//  2. Run: resolve credentials, register the check, drive the loop until
//     the context is cancelled or a signal arrives
type Application struct {
	config *Config
	agent  *device.Agent
}

// NewApplication builds the application from the environment plus the given
// flag configuration. Flags win over environment variables.
func NewApplication(cfg *Config) (*Application, error) {
	opts, err := device.OptionsFromEnv()
	if err != nil {
		logging.Error("app", err, "Failed to read agent environment")
		return nil, err
	}
	return newApplication(cfg, opts)
}

func newApplication(cfg *Config, opts device.Options) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Kubeconfig != "" {
		opts.Kubeconfig = cfg.Kubeconfig
	}
	if cfg.Interval > 0 {
		opts.Interval = cfg.Interval
	}
	if cfg.StatusPatch != "" {
		opts.StatusPatch = device.StatusPatchMode(cfg.StatusPatch)
	}
	if cfg.RecordEvents {
		opts.RecordEvents = true
	}

	agent, err := device.New(opts)
	if err != nil {
		logging.Error("app", err, "Failed to create device agent")
		return nil, err
	}

	return &Application{
		config: cfg,
		agent:  agent,
	}, nil
}

// Agent returns the wired device agent.
func (a *Application) Agent() *device.Agent {
	return a.agent
}

// Run executes the agent until ctx is cancelled or a fatal error occurs.
// SIGINT and SIGTERM trigger a graceful shutdown; a clean shutdown returns
// nil.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.agent.Initialize(ctx); err != nil {
		return err
	}

	check, err := a.buildHealthCheck(ctx)
	if err != nil {
		return err
	}
	if err := a.agent.Setup(ctx, check); err != nil {
		return err
	}

	// Surface the mounted device configuration at startup.
	deviceCfg := deviceconfig.Load(a.config.ConfigDir)
	logging.Info("app", "Device configuration: %d driver properties, %d instructions, %d telemetries",
		len(deviceCfg.DriverProperties), len(deviceCfg.Instructions.Instructions), len(deviceCfg.Telemetries.Telemetries))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.agent.RunEvery(groupCtx, a.config.Interval)
	})

	if a.config.WatchConfig {
		watcher := deviceconfig.NewWatcher(a.config.ConfigDir, 0, func(reloaded *deviceconfig.Config) {
			logging.Info("app", "Device configuration reloaded: %d driver properties, %d instructions, %d telemetries",
				len(reloaded.DriverProperties), len(reloaded.Instructions.Instructions), len(reloaded.Telemetries.Telemetries))
		})
		group.Go(func() error {
			if err := watcher.Start(groupCtx); err != nil {
				return err
			}
			<-groupCtx.Done()
			watcher.Stop()
			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info("app", "Agent for device %s shut down", a.agent.Name())
	return nil
}
