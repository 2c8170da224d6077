package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that re-flushes the outbox and processes due subscriptions`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	if app.cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		// Commits flush their own outbox rows synchronously; this job
		// re-flushes whatever a crash or flush failure left behind.
		_, err = scheduler.NewJob(
			gocron.DurationJob(app.cfg.Jobs.OutboxFlushInterval),
			gocron.NewTask(func() {
				txn := app.tracer.StartTransaction("worker-flush-outbox")
				defer app.tracer.EndTransaction(txn)

				if err := app.flusher.Flush(ctx); err != nil {
					app.tracer.RecordError(txn, err)
					log.Error().Err(err).Msg("Failed to flush outbox")
				}
			}),
		)
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(app.cfg.Jobs.RecurrenceInterval),
			gocron.NewTask(func() {
				txn := app.tracer.StartTransaction("worker-process-subscriptions")
				defer app.tracer.EndTransaction(txn)

				result, err := app.recurrence.Run(ctx)
				if err != nil {
					app.tracer.RecordError(txn, err)
					log.Error().Err(err).Msg("Failed to process due subscriptions")
					return
				}
				if len(result.Errors) > 0 {
					log.Warn().
						Int("processed", result.Processed).
						Int("total", result.Total).
						Strs("errors", result.Errors).
						Msg("Subscription run completed with failures")
				}
			}),
		)
		if err != nil {
			return err
		}

		log.Info().
			Dur("outbox_flush_interval", app.cfg.Jobs.OutboxFlushInterval).
			Dur("recurrence_interval", app.cfg.Jobs.RecurrenceInterval).
			Msg("Starting scheduled jobs")
		scheduler.Start()

		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
