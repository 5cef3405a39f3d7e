package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/resume-evaluator/internal/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume evaluation jobs from the queue",
	Run: func(cmd *cobra.Command, _ []string) {
		work(cmd)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func work(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := newEnv()
	defer e.close()

	svc, err := e.newService(ctx)
	if err != nil {
		e.logger.Fatal("building the service", zap.Error(err))
	}

	client, err := queue.Dial(e.config.Queue, e.logger.Named("queue"))
	if err != nil {
		e.logger.Fatal("connecting to the queue", zap.Error(err))
	}
	defer client.Close()

	e.logger.Info("starting the worker", zap.String("version", version))

	err = client.Consume(ctx, svc.HandleJob)
	if errors.Is(err, context.Canceled) {
		e.logger.Info("worker stopped")
		return
	}
	e.logger.Fatal("consuming evaluation jobs", zap.Error(err))
}
