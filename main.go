package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/psiscout/config"
	"github.com/pthm-cable/psiscout/game"
	"github.com/pthm-cable/psiscout/source"
	"github.com/pthm-cable/psiscout/telemetry"
	"github.com/pthm-cable/psiscout/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	sourceKind := flag.String("source", "", "Frame source: synthetic | dir (empty = use config)")
	framesDir := flag.String("frames-dir", "", "Image directory for the dir source (implies -source dir)")
	streamAddr := flag.String("stream-addr", "", "Serve window stats over websocket at this address (empty = use config)")
	workers := flag.Int("workers", 0, "Worker goroutines for the scout phase (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *framesDir != "" {
		cfg.Source.Kind = "dir"
		cfg.Source.Dir = *framesDir
	}
	if *sourceKind != "" {
		cfg.Source.Kind = *sourceKind
	}
	if *streamAddr != "" {
		cfg.Stream.Addr = *streamAddr
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		RunID:     uuid.NewString(),
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Workers:   *workers,
	}

	// run returns before os.Exit so the stream and signal handler shut down
	if err := run(cfg, opts, *headless, *maxTicks); err != nil {
		slog.Error("simulation failed", "run_id", opts.RunID, "error", err)
		os.Exit(1)
	}
}

// run owns the signal context and the optional stats stream for one
// simulation. Cancellation by signal is not an error.
func run(cfg *config.Config, opts game.Options, headless bool, maxTicks int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Stream.Addr != "" {
		stream := telemetry.NewStream(opts.RunID)
		go stream.Run()
		defer stream.Stop()
		go func() {
			if err := stream.ListenAndServe(ctx, cfg.Stream.Addr); err != nil {
				slog.Error("stream server failed", "error", err)
			}
		}()
		opts.Stream = stream
	}

	var err error
	if headless {
		err = runHeadless(ctx, cfg, opts, maxTicks)
	} else {
		err = runGraphical(ctx, cfg, opts, maxTicks)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setup builds the game and its frame source.
func setup(cfg *config.Config, opts game.Options) (*game.Game, source.Source, error) {
	g, err := game.New(cfg, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("create game: %w", err)
	}
	src, err := source.New(&cfg.Source, cfg.Field.Size, opts.Seed)
	if err != nil {
		g.Close()
		return nil, nil, fmt.Errorf("create source: %w", err)
	}
	return g, src, nil
}

// runHeadless steps the simulation as fast as frames arrive. Pure CPU, no
// raylib calls.
func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int) error {
	g, src, err := setup(cfg, opts)
	if err != nil {
		return err
	}
	defer src.Close()
	defer g.Close()

	slog.Info("starting headless simulation",
		"run_id", g.RunID(),
		"seed", opts.Seed,
		"source", cfg.Source.Kind,
		"population", g.Population(),
		"field_size", cfg.Field.Size,
		"max_ticks", maxTicks,
	)

	for maxTicks <= 0 || int(g.Tick()) < maxTicks {
		frame, err := src.Next(ctx)
		if err != nil {
			return fmt.Errorf("next frame: %w", err)
		}
		if err := g.Step(frame); err != nil {
			return err
		}
	}
	slog.Info("max ticks reached", "tick", g.Tick(), "stats", g.Stats())
	return nil
}

// runGraphical opens the window and drives the viewer until it is closed.
func runGraphical(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "psiscout")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, src, err := setup(cfg, opts)
	if err != nil {
		return err
	}
	defer src.Close()
	defer g.Close()

	v := viewer.New(g, src, cfg.Source.Kind)
	defer v.Unload()

	slog.Info("starting simulation",
		"run_id", g.RunID(),
		"seed", opts.Seed,
		"source", cfg.Source.Kind,
		"population", g.Population(),
	)

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := v.Update(ctx); err != nil {
			return err
		}
		v.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}
