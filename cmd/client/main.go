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

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/iudanet/homesync/internal/client/api"
	"github.com/iudanet/homesync/internal/client/cli"
	"github.com/iudanet/homesync/internal/client/data"
	"github.com/iudanet/homesync/internal/client/iocli"
	"github.com/iudanet/homesync/internal/client/realtime"
	"github.com/iudanet/homesync/internal/client/storage"
	"github.com/iudanet/homesync/internal/client/storage/boltdb"
	"github.com/iudanet/homesync/internal/client/sync"
	"github.com/iudanet/homesync/internal/config"
	"github.com/iudanet/homesync/internal/conflict"
	"github.com/iudanet/homesync/internal/models"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги переопределяют переменные окружения
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "", "Server URL")
	dbPath := flag.String("db", "", "Path to local database")
	token := flag.String("token", "", "Access token")
	household := flag.String("household", "", "Household to work with")
	strategy := flag.String("strategy", "", "Conflict strategy: merge, server-wins, client-wins, manual")
	stdio := iocli.NewStdio()
	flag.Usage = func() { cli.PrintUsage(stdio) }

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			cfg.ServerURL = *serverURL
		case "db":
			cfg.DBPath = *dbPath
		case "token":
			cfg.Token = *token
		case "household":
			cfg.Household = *household
		case "strategy":
			cfg.Strategy = *strategy
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Токен не задан: спрашиваем его, только если команда идет на сервер и есть терминал
	if cfg.Token == "" && cli.NeedsServer(args[0], args[1:]) && term.IsTerminal(int(os.Stdin.Fd())) {
		cfg.Token, err = cli.ReadToken(stdio)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(cfg, stdio, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Client, stdio iocli.IO, command string, args []string) error {
	// Логи клиента идут в stderr, чтобы не смешиваться с выводом команд
	logger, closer, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	apiClient := api.NewClient(cfg.ServerURL, cfg.Token)
	snapshots := storage.NewSnapshots(boltStorage)

	syncService, err := newSyncService(cfg, apiClient, boltStorage, snapshots, logger)
	if err != nil {
		return err
	}
	dataService := data.NewService(boltStorage, snapshots, logger)

	c := cli.New(cli.Deps{
		IO:          stdio,
		Server:      apiClient,
		DataService: dataService,
		SyncService: syncService,
		Store:       boltStorage,
		Watch:       newWatcher(cfg, dataService, syncService, logger),
		Household:   cfg.Household,
		ServerURL:   cfg.ServerURL,
	})
	return c.Run(ctx, command, args)
}

func newSyncService(cfg *config.Client, apiClient *api.Client, store *boltdb.Storage, snapshots *storage.Snapshots, logger *slog.Logger) (sync.Service, error) {
	strategy, err := models.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	tolerances, err := cfg.KindTolerances()
	if err != nil {
		return nil, err
	}

	detectorOpts := []conflict.Option{conflict.WithTolerance(cfg.Tolerance)}
	for kind, d := range tolerances {
		detectorOpts = append(detectorOpts, conflict.WithKindTolerance(kind, d))
	}

	return sync.NewService(apiClient, store, snapshots, logger,
		sync.WithStrategy(strategy),
		sync.WithMaxRetries(cfg.MaxRetries),
		sync.WithDetector(conflict.NewDetector(store, detectorOpts...)),
	), nil
}

// newWatcher держит realtime подписку и периодическую синхронизацию,
// пока пользователь не прервет команду watch
func newWatcher(cfg *config.Client, dataService data.Service, syncService sync.Service, logger *slog.Logger) cli.Watcher {
	return func(ctx context.Context, hook realtime.EventHook) error {
		households := []string{cfg.Household}
		sub, err := realtime.NewSubscriber(cfg.ServerURL, cfg.Token, households, dataService, syncService, logger,
			realtime.WithEventHook(hook))
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return sub.Run(gctx)
		})
		g.Go(func() error {
			sync.Run(gctx, syncService, households, cfg.SyncInterval, logger)
			return nil
		})

		err = g.Wait()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

func printVersion() {
	fmt.Printf("HomeSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
