package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-group/jobs"
)

func newConsolCommand() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "consol",
		Short: "Manage consolidated report refreshes",
	}
	cmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Redis address of the job queue (default REDIS_ADDR)")
	cmd.AddCommand(newConsolRefreshCommand(&redisAddr))
	cmd.AddCommand(newConsolQueueCommand(&redisAddr))
	return cmd
}

func newConsolRefreshCommand(redisAddr *string) *cobra.Command {
	var group, period string
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Enqueue a rebuild of cached consolidated reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := jobs.ParseRefreshScope(group, period); err != nil {
				return err
			}
			queue, err := dialQueue(*redisAddr)
			if err != nil {
				return err
			}
			defer queue.Close()

			info, duplicate, err := queue.refresh(cmd.Context(), group, period, force)
			if err != nil {
				return err
			}
			if duplicate {
				fmt.Fprintln(cmd.OutOrStdout(), "an identical refresh is already queued")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s (id %s)\n", info.Type, info.Queue, info.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "all", `holding company id, or "all"`)
	cmd.Flags().StringVar(&period, "period", "active", `period (YYYY-MM), or "active"`)
	cmd.Flags().BoolVar(&force, "force", false, "drop every cached report before rebuilding")

	return cmd
}

func newConsolQueueCommand(redisAddr *string) *cobra.Command {
	var scheduled int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show job queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := dialQueue(*redisAddr)
			if err != nil {
				return err
			}
			defer queue.Close()

			info, err := queue.stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "queue %s: pending=%d active=%d scheduled=%d retry=%d failed=%d latency=%s\n",
				info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry, info.Failed, info.Latency.Round(time.Millisecond))
			if info.Paused {
				fmt.Fprintln(out, "queue is paused")
			}
			if scheduled <= 0 {
				return nil
			}
			tasks, err := queue.scheduled(scheduled)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				fmt.Fprintf(out, "  %s  %s  at %s\n", t.ID, describeTask(t), t.NextProcessAt.UTC().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&scheduled, "scheduled", 0, "also list up to this many scheduled tasks")

	return cmd
}
