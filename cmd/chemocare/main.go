// Command chemocare manages a recurring treatment plan and publishes it as
// an iCalendar feed.
//
// Usage:
//
//	chemocare [-config file] init -start 2025-01-01 -frequency 14 [-cycles 6]
//	chemocare [-config file] move -index 1 -date 2025-01-20
//	chemocare [-config file] export [-out plan.ics]
//	chemocare [-config file] serve
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/samber/mo"

	"github.com/terencehorsman/ChemoCare/planner"
	"github.com/terencehorsman/ChemoCare/schedule"
	"github.com/terencehorsman/ChemoCare/server"
	"github.com/terencehorsman/ChemoCare/storage"
	"github.com/terencehorsman/ChemoCare/storage/memory"
	"github.com/terencehorsman/ChemoCare/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	p := planner.New(store, planner.WithLogger(logger))
	ctx := context.Background()

	if len(args) == 0 {
		return fmt.Errorf("missing command: init, move, export or serve")
	}
	switch args[0] {
	case "init":
		return runInit(ctx, p, args[1:])
	case "move":
		return runMove(ctx, p, args[1:])
	case "export":
		return runExport(ctx, p, cfg, args[1:])
	case "serve":
		return runServe(p, cfg, logger)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openStore(cfg config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	default:
		return sqlite.Open(cfg.Storage.Path)
	}
}

func runInit(ctx context.Context, p *planner.Planner, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	start := fs.String("start", "", "start date of occurrence #0 (YYYY-MM-DD)")
	frequency := fs.Int("frequency", 0, "days between occurrences")
	cycles := fs.Int("cycles", 0, "optional total number of cycles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDate, err := schedule.ParseISODate(*start)
	if err != nil {
		return err
	}
	plan := schedule.Plan{StartDate: startDate, FrequencyDays: *frequency}
	if *cycles > 0 {
		plan.CycleCap = mo.Some(*cycles)
	}
	return p.SavePlan(ctx, plan)
}

func runMove(ctx context.Context, p *planner.Planner, args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	index := fs.Int("index", -1, "occurrence index to move")
	date := fs.String("date", "", "new date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	newDate, err := schedule.ParseISODate(*date)
	if err != nil {
		return err
	}
	return p.MoveOccurrence(ctx, *index, newDate)
}

func runExport(ctx context.Context, p *planner.Planner, cfg config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output file; stdout when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := p.ExportICS(ctx, cfg.Calendar.Name, cfg.Calendar.MonthsAhead)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Print(text)
		return nil
	}
	return os.WriteFile(*out, []byte(text), 0o644)
}

func runServe(p *planner.Planner, cfg config, logger *slog.Logger) error {
	s, err := server.New(p, server.Config{
		BaseURI:      cfg.Server.BaseURI,
		CalendarName: cfg.Calendar.Name,
		MonthsAhead:  cfg.Calendar.MonthsAhead,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.BaseURI, s)

	logger.Info("serving calendar", "listen", cfg.Server.Listen, "base_uri", cfg.Server.BaseURI)
	return http.ListenAndServe(cfg.Server.Listen, mux)
}
