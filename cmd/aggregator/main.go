package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/programme-lv/aggregator/internal/aggregator"
	"github.com/programme-lv/aggregator/internal/diag"
	"github.com/programme-lv/aggregator/internal/environment"
	"github.com/programme-lv/aggregator/internal/report"
	"github.com/programme-lv/aggregator/internal/sanity"
	"github.com/programme-lv/aggregator/internal/source/jsonl"
	"github.com/programme-lv/aggregator/internal/source/natssrc"
	"github.com/programme-lv/aggregator/internal/source/sqssrc"
	"github.com/programme-lv/aggregator/internal/task"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cmd := &cli.Command{
		Name:  "aggregator",
		Usage: "fold an evaluation event stream into scores and run task sanity checks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "task-dir",
				Value: ".",
				Usage: "directory holding task.toml",
			},
			&cli.StringFlag{
				Name:  "events",
				Value: "-",
				Usage: "event log file (JSON lines, .zst supported), '-' for stdin",
			},
			&cli.StringFlag{
				Name:  "nats",
				Usage: "consume events from this NATS subject instead of a file",
			},
			&cli.BoolFlag{
				Name:  "sqs",
				Usage: "consume events from the SQS queue configured in the environment",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("aggregation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runId := uuid.NewString()
	slog.Info("starting aggregation run", "run_id", runId)

	t, err := task.Load(cmd.String("task-dir"))
	if err != nil {
		return err
	}
	slog.Info("loaded task", "name", t.Name, "subtasks", len(t.Subtasks))

	diags := diag.New()
	checks := sanity.Default()

	if err := checks.RunPre(ctx, t, diags); err != nil {
		renderAndFlush(t, nil, diags)
		return fmt.Errorf("pre-hooks failed: %w", err)
	}
	if diags.HasErrors() {
		renderAndFlush(t, nil, diags)
		return fmt.Errorf("task validation reported errors, not starting evaluation")
	}

	src, closeSrc, err := openSource(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeSrc()

	agg := aggregator.New(t, diags)
	drainErr := agg.Drain(ctx, src)
	if drainErr != nil {
		slog.Error("evaluation aborted", "error", drainErr)
	}

	// Drain has returned, so no writer touches the tree past this point
	// and the post-hooks observe a settled state.
	if err := checks.RunPost(ctx, t, agg.Tree(), diags); err != nil {
		slog.Error("post-hooks failed", "error", err)
	}

	renderAndFlush(t, agg, diags)

	if drainErr != nil {
		return drainErr
	}
	if diags.HasErrors() {
		return fmt.Errorf("diagnostics contain errors")
	}
	return nil
}

func openSource(ctx context.Context, cmd *cli.Command) (aggregator.EventSource, func(), error) {
	env := environment.ReadEnvConfig()

	if subject := cmd.String("nats"); subject != "" {
		url := env.NatsURL
		if url == "" {
			url = nats.DefaultURL
		}
		nc, err := nats.Connect(url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		src, err := natssrc.New(nc, subject)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return src, func() { _ = src.Close(); nc.Close() }, nil
	}

	if cmd.Bool("sqs") {
		if env.SqsQueueUrl == "" {
			return nil, nil, fmt.Errorf("SQS_QUEUE_URL is not set")
		}
		src, err := sqssrc.NewFromEnv(ctx, env.AwsRegion, env.SqsQueueUrl)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	path := cmd.String("events")
	if path == "-" {
		return jsonl.New(os.Stdin), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open event log: %w", err)
	}
	if strings.HasSuffix(path, ".zst") {
		src, err := jsonl.NewZstd(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return src, func() { f.Close() }, nil
	}
	return jsonl.New(f), func() { f.Close() }, nil
}

func renderAndFlush(t *task.Task, agg *aggregator.Aggregator, diags *diag.Channel) {
	if agg != nil {
		report.Render(os.Stdout, t, agg.Tree(), diags)
		return
	}
	for _, e := range diags.Entries() {
		fmt.Printf("%s [%s]: %s\n", e.Severity, e.Source, e.Message)
	}
}
