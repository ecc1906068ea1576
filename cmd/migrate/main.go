package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"legacy-migrator/cmd/internal/app"
	"legacy-migrator/config"
	"legacy-migrator/eventbus"
	"legacy-migrator/events"
	"legacy-migrator/services"
)

const usage = `usage: migrate [flags] <command>

commands:
  single    migrate one record (-post)
  chunk     migrate the next -limit records that are not migrated
  bulk      attempt every legacy record
  preview   show the fields a migration of -post would write
  fields    show the enhanced fields saved on -post
  dashboard print dashboard stats and the first page of rows
  watch     follow migration events from kafka

flags:
`

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	postID := fs.Int64("post", 0, "record id for single, preview and fields")
	limit := fs.Int("limit", cfg.Migration.DefaultChunkLimit, "records per chunk run (1..200)")
	force := fs.Bool("force", false, "migrate records that already carry enhanced meta")
	dryRun := fs.Bool("dry-run", false, "parse without writing")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		config.Logger.Errorf("failed to start: %v", err)
		os.Exit(1)
	}

	err = run(ctx, a, fs.Arg(0), *postID, *limit, *force, *dryRun)
	a.Close()
	if err != nil {
		config.Logger.Errorf("%s: %v", fs.Arg(0), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cmd string, postID int64, limit int, force, dryRun bool) error {
	svc := a.Service
	switch cmd {
	case "single":
		if postID <= 0 {
			return errors.New("Invalid post ID.")
		}
		return printJSON(svc.RunSingle(ctx, postID, force, dryRun))
	case "chunk":
		return printJSON(svc.RunChunk(ctx, limit, force, dryRun))
	case "bulk":
		return printJSON(svc.RunBulk(ctx, force, dryRun))
	case "preview":
		return printJSON(svc.PreviewMapping(ctx, postID))
	case "fields":
		return printJSON(svc.GetMigratedFields(ctx, postID))
	case "dashboard":
		return printJSON(svc.GetDashboardPayload(ctx, services.DashboardQuery{Filter: "all", Page: 1}))
	case "watch":
		// runs always finish; only watch stops on a signal
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return watch(ctx, a)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func printJSON[T any](v T, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// watch prints every migration event until interrupted.
func watch(ctx context.Context, a *app.App) error {
	groupID := a.Config.Kafka.GroupID + "-watch"
	err := a.Bus.Subscribe(ctx, groupID, a.Topic, func(ctx context.Context, evt eventbus.Event) error {
		t, err := events.PeekType(evt.Payload)
		if err != nil {
			return err
		}
		switch t {
		case events.MigrationRecordProcessed:
			e, err := eventbus.DecodeJSON[events.MigrationRecordProcessedEvent](evt)
			if err != nil {
				return err
			}
			fmt.Printf("%s post=%d %s: %s\n", e.RunID, e.PostID, e.Status, e.Message)
		case events.MigrationRunFinished:
			e, err := eventbus.DecodeJSON[events.MigrationRunFinishedEvent](evt)
			if err != nil {
				return err
			}
			fmt.Printf("%s finished: processed=%d migrated=%d failed=%d skipped=%d dry_run=%d\n",
				e.RunID, e.Processed, e.Migrated, e.Failed, e.Skipped, e.DryRun)
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
