package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"twinops-sim/internal/admin"
	"twinops-sim/internal/ai"
	"twinops-sim/internal/config"
	"twinops-sim/internal/logging"
	"twinops-sim/internal/sim"
	"twinops-sim/internal/store"
)

var (
	servePrintOnly  bool
	serveConfigPath string
	serveSchemaPath string
	serveTick       time.Duration
	serveLogFile    string
	serveTUI        bool
	serveColor      bool
	serveAddr       string
	serveNoAI       bool
	serveDebug      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the twin simulator and dashboard",
	Long:  "serve seeds the entity store from config, starts the ingestion simulator, and serves the dashboard with AI-assisted schema generation, anomaly detection and prediction.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}

		log := logging.New(serveDebug)
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		st := store.New()
		if err := seedStore(st, cfg); err != nil {
			return err
		}

		writer, alertWriter, cleanup, err := newWriters(servePrintOnly, serveTUI, serveColor, serveLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		tickInterval := serveTick
		if tickInterval == 0 {
			tickInterval = cfg.TickInterval.Std()
		}
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		simulator := sim.NewSimulator(st, writer, alertWriter, tickInterval, nil, nil)

		var gateway *ai.Gateway
		if !serveNoAI {
			gen, err := ai.NewTextGenerator(ai.ProviderConfig{
				Provider: cfg.AI.Provider,
				BaseURL:  cfg.AI.BaseURL,
				Model:    cfg.AI.Model,
				APIKey:   os.Getenv(cfg.AI.APIKeyEnv),
				Timeout:  cfg.AI.Timeout.Std(),
			})
			if err != nil {
				return err
			}
			gateway = ai.NewGateway(gen)
			log.Info("AI gateway configured", "model", gateway.Model())
		}

		srv := admin.NewServer(simulator, gateway)
		go func() {
			log.Info("dashboard listening", "addr", serveAddr)
			if err := srv.Start(ctx, serveAddr); err != nil && err != http.ErrServerClosed {
				log.Error("dashboard server failed", "err", err)
				cancel()
			}
		}()

		go simulator.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigs:
		case <-ctx.Done():
		}

		cancel()
		log.Info("twin simulation stopped")
		return nil
	},
}

// seedStore appends configured definitions and instances.
func seedStore(st *store.Store, cfg *config.SimulationConfig) error {
	for _, d := range cfg.Definitions {
		if err := st.AppendDefinition(d.ToTwin()); err != nil {
			return err
		}
	}
	for _, i := range cfg.Instances {
		inst, err := i.ToTwin()
		if err != nil {
			return err
		}
		if err := st.AppendInstance(inst); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config/twins.yaml", "Path to twin configuration YAML")
	serveCmd.Flags().StringVar(&serveSchemaPath, "schema", "schemas/twins.cue", "Path to CUE schema file")
	serveCmd.Flags().DurationVar(&serveTick, "tick", 0, "Ingestion tick interval (e.g. 500ms, 3s); overrides config")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export telemetry/alert logs (JSONL)")
	serveCmd.Flags().BoolVar(&serveTUI, "tui", false, "Render telemetry in a terminal UI")
	serveCmd.Flags().BoolVar(&serveColor, "color", false, "Colorize STDOUT telemetry output")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Dashboard listen address")
	serveCmd.Flags().BoolVar(&serveNoAI, "no-ai", false, "Disable the AI gateway endpoints")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}
