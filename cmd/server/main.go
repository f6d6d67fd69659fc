package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/homesync/internal/config"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server"
	"github.com/iudanet/homesync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	logger, closer, err := config.NewLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	srv := server.New(cfg, store, Version, logger)

	command := "serve"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	admin := server.NewAdmin(store, store, srv.Validator())

	switch command {
	case "serve":
		logger.Info("HomeSync server starting", "version", Version, "commit", GitCommit, "db", cfg.DBPath)
		return srv.Run(ctx)

	case "add-user":
		if len(args) != 1 {
			return fmt.Errorf("usage: add-user <username>")
		}
		user, err := admin.CreateUser(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (%s)\n", user.Username, user.ID)

	case "add-household":
		if len(args) != 3 {
			return fmt.Errorf("usage: add-household <id> <name> <owner-username>")
		}
		h, err := admin.CreateHousehold(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Household created: %s (%s), owner %s\n", h.ID, h.Name, args[2])

	case "add-member":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: add-member <household-id> <username> [owner|member]")
		}
		role := models.RoleMember
		if len(args) == 3 {
			role = args[2]
		}
		if err := admin.AddMember(ctx, args[0], args[1], role); err != nil {
			return err
		}
		fmt.Printf("%s is now %s of %s\n", args[1], role, args[0])

	case "remove-member":
		if len(args) != 2 {
			return fmt.Errorf("usage: remove-member <household-id> <username>")
		}
		if err := admin.RemoveMember(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s removed from %s\n", args[1], args[0])

	case "token":
		if len(args) != 1 {
			return fmt.Errorf("usage: token <username>")
		}
		token, expiresAt, err := admin.IssueToken(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func printUsage() {
	fmt.Println("HomeSync Server")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  homesync-server [--version] [COMMAND]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                                       Run the sync API and realtime hub (default)")
	fmt.Println("  add-user <username>                         Create a user")
	fmt.Println("  add-household <id> <name> <owner>           Create a household owned by <owner>")
	fmt.Println("  add-member <household> <username> [role]    Add a member (role: owner|member)")
	fmt.Println("  remove-member <household> <username>        Remove a member")
	fmt.Println("  token <username>                            Issue an access token")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  HOMESYNC_JWT_SECRET (required), HOMESYNC_ADDR, HOMESYNC_DB,")
	fmt.Println("  HOMESYNC_ALLOWED_ORIGINS, HOMESYNC_RATE_LIMIT, HOMESYNC_LOG_*")
}

func printVersion() {
	fmt.Printf("HomeSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
