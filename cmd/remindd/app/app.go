// Package app wires the reminder daemon's CLI: the trigger engine, the
// sqlite trigger store, capability detection and the console renderers.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/sandeepkv93/remindd/internal/delivery"
	"github.com/sandeepkv93/remindd/internal/remind"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/views"
	"github.com/sandeepkv93/remindd/pkg/logger"
)

var (
	dbPath    string
	sandboxed bool
	quiet     bool
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "db, d",
		Usage:       "path to the trigger store database",
		EnvVar:      "REMINDD_DB",
		Value:       "remindd.db",
		Destination: &dbPath,
	},
	cli.BoolFlag{
		Name:        "sandboxed",
		Usage:       "mark this process as running in a restricted sandbox",
		EnvVar:      "REMINDD_SANDBOXED",
		Destination: &sandboxed,
	},
	cli.BoolFlag{
		Name:        "quiet, q",
		Usage:       "suppress informational log output",
		Destination: &quiet,
	},
}

func Execute(args []string, version string) error {
	app := cli.NewApp()
	app.Name = "remindd"
	app.Usage = "shift and note reminder scheduling daemon"
	app.Version = version
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "run the trigger engine until interrupted",
			Action: runAction,
		},
		{
			Name:   "status",
			Usage:  "print the reminder scheduling capability status",
			Action: statusAction,
		},
		{
			Name:   "grant",
			Usage:  "record notification permission as granted",
			Action: grantAction,
		},
		{
			Name:   "revoke",
			Usage:  "record notification permission as denied",
			Action: revokeAction,
		},
	}
	return app.Run(args)
}

func newLogger() logger.Logger {
	if quiet {
		return logger.Nop()
	}
	return logger.New(log.New(os.Stderr, "", log.LstdFlags))
}

func openStore() (*storage.SQLiteStore, error) {
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateUp(store.DB()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate trigger store: %w", err)
	}
	return store, nil
}

func runAction(c *cli.Context) error {
	lg := newLogger()
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	engine := delivery.NewEngine(store, 16)
	engine.Start()
	defer engine.Stop()

	ctx := context.Background()
	missed, queued, err := engine.Replay(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replay persisted triggers: %w", err)
	}
	lg.Infof("engine started: %d triggers queued, %d missed while down", queued, missed)

	detector := remind.MechanismDetector{Mechanism: engine, Sandboxed: sandboxed}
	status := detector.Detect(ctx)
	fmt.Println(views.RenderCapabilityStatus(status))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case fired, ok := <-engine.C():
			if !ok {
				return nil
			}
			fmt.Println(views.RenderFiredTrigger(fired.Trigger, fired.FiredAt, fired.Missed))
		case sig := <-sigCh:
			lg.Infof("received %s, shutting down", sig)
			return nil
		}
	}
}

func statusAction(c *cli.Context) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	engine := delivery.NewEngine(store, 1)
	detector := remind.MechanismDetector{Mechanism: engine, Sandboxed: sandboxed}
	fmt.Println(views.RenderCapabilityStatus(detector.Detect(context.Background())))
	return nil
}

func grantAction(c *cli.Context) error {
	return setPermission("granted")
}

func revokeAction(c *cli.Context) error {
	return setPermission("denied")
}

func setPermission(value string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.PutSetting(context.Background(), delivery.PermissionSetting, value); err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	fmt.Printf("notification permission recorded as %s\n", value)
	return nil
}
