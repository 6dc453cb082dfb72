package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/invitation"
	invitationpg "github.com/minrisk/risk-management/internal/invitation/postgres"
	"github.com/minrisk/risk-management/pkg/logger"
)

// sweepCmd expires stale pending invitations. Meant to run from cron; the
// accept path also expires lazily, so a missed run is not harmful.
var sweepCmd = &cobra.Command{
	Use:   "sweep-invitations",
	Short: "Expire pending invitations past their deadline",
	Run: func(cmd *cobra.Command, args []string) {
		runSweep()
	},
}

func runSweep() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()
	if log == nil {
		log = slog.Default()
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open gorm connection: %v\n", err)
		os.Exit(1)
	}

	repo := invitationpg.NewInvitationRepository(gormDB)
	svc := invitation.NewService(repo, nil, nil, nil, nil, nil, cfg.Server.BaseURL, cfg.Security.BCryptCost, log)

	ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := svc.SweepExpired(ctx)
	if err != nil {
		log.Error("invitation sweep failed", "error", err)
		os.Exit(1)
	}

	log.Info("invitation sweep finished", "expired", n)
}
