package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/acctkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/acctkeeper/internal/client/cli"
	"github.com/dmitrijs2005/acctkeeper/internal/client/config"
	"github.com/dmitrijs2005/acctkeeper/internal/client/database"
	"github.com/dmitrijs2005/acctkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/acctkeeper/internal/client/vault"
	"github.com/dmitrijs2005/acctkeeper/internal/filex"
	"github.com/dmitrijs2005/acctkeeper/internal/flagx"
	"github.com/dmitrijs2005/acctkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(flagx.CommandLineArgs())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	dbPath, err := filex.EnsureParentDir(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("prepare data dir: %w", err)
	}

	db, err := database.InitDatabase(ctx, dbPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", dbPath, "error", err)
		return err
	}
	defer db.Close()

	v := vault.New(metadata.NewSQLiteStore(db),
		vault.WithLogger(logger),
		vault.WithAutoLockMinutes(cfg.AutoLockMinutes),
		vault.WithLockListener(cli.LockNotifier(os.Stdout)),
	)

	app, err := cli.NewApp(cfg, v, logger)
	if err != nil {
		v.Close()
		return err
	}

	app.Run(ctx)
	return nil
}
