package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nano-sync/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <filterPath|dir>...",
	Short: "sync once, then re-sync whenever a tracked filter changes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"settle time before a change burst triggers a sync")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targets, err := expandTargets(args)
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := syncOne(eng, t); err != nil {
			return err
		}
	}

	w, err := watch.New(targets, watchDebounce, func(changed []string) {
		for _, p := range changed {
			if err := syncOne(eng, p); err != nil {
				log.WithError(err).WithField("filter", p).Error("sync failed")
			}
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("targets", len(targets)).Info("watching")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
