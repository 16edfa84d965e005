package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmh-gis/sewertrace/pkg/config"
	"github.com/tmh-gis/sewertrace/pkg/logging"
	"github.com/tmh-gis/sewertrace/pkg/metrics"
	"github.com/tmh-gis/sewertrace/pkg/network"
	"github.com/tmh-gis/sewertrace/pkg/record"
	"github.com/tmh-gis/sewertrace/pkg/snapshot"
	"github.com/tmh-gis/sewertrace/pkg/trace"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	pipesFile := flag.String("pipes", "", "Path to pipes CSV")
	branchesFile := flag.String("branches", "", "Path to branches CSV (optional)")
	parcelsFile := flag.String("parcels", "", "Path to parcels CSV (optional)")
	seedsFlag := flag.String("seeds", "", "Comma-separated seed pipe ids")
	directionFlag := flag.String("direction", "", "Trace direction: upstream or downstream")
	budgetFlag := flag.Int("budget", -1, "Max pipes per trace (0 = unlimited)")
	nameFlag := flag.String("name", "", "Trace name for the summary")
	format := flag.String("format", "json", "Output format: json or ids")
	noSnapshot := flag.Bool("no-snapshot", false, "Skip the graph snapshot cache")
	metricsListen := flag.String("metrics-listen", "", "Serve Prometheus metrics on this address while running (optional)")
	flag.Parse()

	if *pipesFile == "" || *seedsFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: sewertrace --pipes pipes.csv --seeds PIPE1,PIPE2 [--direction upstream|downstream]")
		fmt.Fprintln(os.Stderr, "                  [--branches branches.csv] [--parcels parcels.csv] [--config config.yaml]")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *directionFlag != "" {
		cfg.Direction = *directionFlag
	}
	if *budgetFlag >= 0 {
		cfg.Budget = *budgetFlag
	}

	direction, err := network.ParseDirection(cfg.Direction)
	if err != nil {
		logger.Error("invalid direction", "error", err)
		os.Exit(1)
	}

	reg := metrics.DefaultRegistry()
	if *metricsListen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", reg.Handler())
			if err := http.ListenAndServe(*metricsListen, mux); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", *metricsListen)
	}

	ctx := context.Background()
	engineLog := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	g := loadOrBuildGraph(ctx, cfg, reg, logger, *pipesFile, *branchesFile, *noSnapshot)

	seeds := parseSeeds(*seedsFlag)
	result, err := trace.Run(g, seeds, trace.Options{
		Direction:  direction,
		Budget:     cfg.Budget,
		Name:       *nameFlag,
		Logger:     engineLog,
		Instrument: reg,
	})
	if err != nil {
		logger.Error("trace failed", "error", err)
		os.Exit(1)
	}

	for _, w := range result.Warnings {
		logger.Warn("trace warning", "warning", w.String())
	}

	if *parcelsFile != "" {
		reportParcelCoverage(logger, cfg, *parcelsFile, g)
	}

	switch *format {
	case "ids":
		for _, id := range result.Pipes {
			fmt.Println(id)
		}
	default:
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("failed to marshal result", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	}
}

// loadOrBuildGraph returns a graph for the pipes file, via the snapshot
// cache when enabled. A corrupt or missing snapshot falls back to a
// fresh build; a failed build is fatal.
func loadOrBuildGraph(ctx context.Context, cfg config.Config, reg *metrics.Registry, logger *slog.Logger, pipesFile, branchesFile string, noSnapshot bool) *network.Graph {
	sourceName := filepath.Base(pipesFile)

	var store snapshot.Store
	if cfg.Snapshot.Enabled && !noSnapshot {
		var err error
		store, err = openSnapshotStore(ctx, cfg.Snapshot)
		if err != nil {
			logger.Warn("snapshot store unavailable, building fresh", "error", err)
			store = nil
		}
	}

	if store != nil {
		g, err := snapshot.Load(ctx, store, sourceName)
		if err == nil {
			reg.SnapshotOp("load", "hit")
			logger.Info("loaded graph snapshot", "source", sourceName, "pipes", g.PipeCount())
			return g
		}
		if errors.Is(err, snapshot.ErrSnapshotNotFound) {
			reg.SnapshotOp("load", "miss")
		} else {
			reg.SnapshotOp("load", "corrupt")
			logger.Warn("snapshot unusable, rebuilding", "error", err)
		}
	}

	g := buildGraph(cfg, reg, logger, sourceName, pipesFile, branchesFile)

	if store != nil {
		if err := snapshot.Save(ctx, store, g); err != nil {
			reg.SnapshotOp("save", "error")
			logger.Warn("failed to save snapshot", "error", err)
		} else {
			reg.SnapshotOp("save", "ok")
			logger.Info("saved graph snapshot", "source", sourceName)
		}
	}
	return g
}

func openSnapshotStore(ctx context.Context, sc config.SnapshotConfig) (snapshot.Store, error) {
	if sc.Bucket != "" {
		return snapshot.NewS3Store(ctx, sc.Bucket, sc.Prefix, sc.Region)
	}
	return snapshot.NewFileStore(sc.Dir)
}

func buildGraph(cfg config.Config, reg *metrics.Registry, logger *slog.Logger, sourceName, pipesFile, branchesFile string) *network.Graph {
	start := time.Now()

	pipeRows, err := record.ReadCSVFile(pipesFile)
	if err != nil {
		logger.Error("failed to read pipes", "error", err)
		os.Exit(1)
	}

	swaps := make([]network.PipeID, 0, len(cfg.SwapNodes))
	for _, id := range cfg.SwapNodes {
		swaps = append(swaps, network.PipeID(id))
	}
	adapter := record.NewAdapter(
		record.WithFieldMap(cfg.Fields),
		record.WithNullNodeSentinels(cfg.NullNodes...),
		record.WithSwapCorrections(swaps...),
	)

	pipes, warnings := adapter.Pipes(pipeRows)

	var branches []network.Branch
	if branchesFile != "" {
		branchRows, err := record.ReadCSVFile(branchesFile)
		if err != nil {
			logger.Error("failed to read branches", "error", err)
			os.Exit(1)
		}
		var bw []network.Warning
		branches, bw = adapter.Branches(branchRows)
		warnings = append(warnings, bw...)
	}

	g, buildWarnings := network.Build(sourceName, pipes, branches)
	warnings = append(warnings, buildWarnings...)

	for _, w := range warnings {
		reg.RowDropped(string(w.Kind))
		logger.Warn("build warning", "warning", w.String())
	}

	reg.GraphBuilt(g.PipeCount(), time.Since(start))
	logger.Info("graph built",
		"source", sourceName,
		"pipes", g.PipeCount(),
		"nodes", g.NodeCount(),
		"branches", g.BranchCount(),
		"warnings", len(warnings),
	)
	return g
}

// reportParcelCoverage logs how many parcels in the parcel layer are
// served by a branch at all, independent of the trace.
func reportParcelCoverage(logger *slog.Logger, cfg config.Config, parcelsFile string, g *network.Graph) {
	rows, err := record.ReadCSVFile(parcelsFile)
	if err != nil {
		logger.Warn("failed to read parcels", "error", err)
		return
	}
	adapter := record.NewAdapter(record.WithFieldMap(cfg.Fields))
	parcels := adapter.Parcels(rows)
	served, unserved := record.ClassifyParcels(parcels, g.AllBranches())
	logger.Info("parcel coverage", "served", len(served), "unserved", len(unserved))
}

func parseSeeds(s string) []network.PipeID {
	parts := strings.Split(s, ",")
	seeds := make([]network.PipeID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			seeds = append(seeds, network.PipeID(p))
		}
	}
	return seeds
}
