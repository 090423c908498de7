package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/djr-reciclagem/recebiveis/jobs"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}
	cmd.AddCommand(jobsStatsCmd())
	cmd.AddCommand(jobsCleanupCmd())
	return cmd
}

func redisOpts() (asynq.RedisClientOpt, error) {
	cfg, err := loadConfig()
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, nil
}

func jobsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the default queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := redisOpts()
			if err != nil {
				return err
			}
			inspector := asynq.NewInspector(opts)
			defer inspector.Close()

			info, err := inspector.GetQueueInfo(jobs.QueueDefault)
			if errors.Is(err, asynq.ErrQueueNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "queue empty")
				return nil
			}
			if err != nil {
				return fmt.Errorf("queue info: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "queue\t%s\n", info.Queue)
			fmt.Fprintf(tw, "pending\t%d\n", info.Pending)
			fmt.Fprintf(tw, "active\t%d\n", info.Active)
			fmt.Fprintf(tw, "scheduled\t%d\n", info.Scheduled)
			fmt.Fprintf(tw, "completed\t%d\n", info.Completed)
			fmt.Fprintf(tw, "archived\t%d\n", info.Archived)
			fmt.Fprintf(tw, "processed today\t%d\n", info.Processed)
			fmt.Fprintf(tw, "failed today\t%d\n", info.Failed)
			return tw.Flush()
		},
	}
}

func jobsCleanupCmd() *cobra.Command {
	var retention time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Queue an idempotency key cleanup now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := redisOpts()
			if err != nil {
				return err
			}
			task, err := jobs.NewIdempotencyCleanupTask(retention)
			if err != nil {
				return err
			}
			client := asynq.NewClient(opts)
			defer client.Close()
			info, err := client.EnqueueContext(cmd.Context(), task, asynq.MaxRetry(3))
			if err != nil {
				return fmt.Errorf("enqueue cleanup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s on %s\n", info.ID, info.Queue)
			return nil
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", jobs.DefaultKeyRetention, "delete keys older than this")
	return cmd
}
