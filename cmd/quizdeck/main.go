package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/conorfennell/quizdeck/internal/config"
	"github.com/conorfennell/quizdeck/internal/storage"
	"github.com/conorfennell/quizdeck/internal/sync"
	"github.com/conorfennell/quizdeck/internal/web"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: quizdeck <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "quizdeck mines flashcard decks from markdown notes and question banks\n")
	fmt.Fprintf(os.Stderr, "and keeps the browsing indexes up to date.\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  scan      rebuild the question index, deck catalog and notes index\n")
	fmt.Fprintf(os.Stderr, "  generate  build decks from notes and merge question bank cards\n")
	fmt.Fprintf(os.Stderr, "  all       generate, then scan\n")
	fmt.Fprintf(os.Stderr, "  history   list recent generation runs from the ledger\n")
	fmt.Fprintf(os.Stderr, "  serve     serve the indexes and trigger endpoints over HTTP\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()
}

func main() {
	_ = godotenv.Load()

	pflag.Usage = usage
	configPath := pflag.StringP("config", "c", "", "YAML config file")
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	if pflag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(pflag.CommandLine, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quizdeck: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, pflag.Arg(0), cfg, logger); err != nil {
		logger.Error("Command failed", "command", pflag.Arg(0), "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg config.Config, logger *slog.Logger) error {
	var db *storage.DB
	if cfg.DB != "" {
		var err error
		if db, err = storage.Open(cfg.DB); err != nil {
			return err
		}
		defer db.Close()
		logger.Debug("Ledger opened", "path", cfg.DB)
	}

	var opts []sync.ServiceOption
	if db != nil {
		opts = append(opts, sync.WithLedger(func() (sync.Recorder, error) {
			r, err := db.StartRun()
			if err != nil {
				return nil, err
			}
			return r, nil
		}))
	}
	svc := sync.NewService(cfg, logger, opts...)

	switch command {
	case "scan":
		report, err := svc.Scan()
		if err != nil {
			return err
		}
		return printJSON(report)

	case "generate":
		summary, err := svc.Generate(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case "all":
		summary, report, err := svc.All(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"run": summary, "scan": report})

	case "history":
		if db == nil {
			return errors.New("history needs a ledger: set --db")
		}
		return printHistory(db, cfg.HistoryLimit)

	case "serve":
		return serve(ctx, cfg, svc, logger)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHistory(db *storage.DB, limit int) error {
	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tDECKS\tCARDS\tMERGED")
	for _, r := range runs {
		status := "failed"
		if r.FinishedAt != nil {
			status = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID[:8], r.StartedAt.Local().Format(time.DateTime), status,
			r.DecksWritten, r.CardsWritten, r.CardsMerged)
	}
	return w.Flush()
}

func serve(ctx context.Context, cfg config.Config, svc *sync.Service, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(cfg, svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
