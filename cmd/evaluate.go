package cmd

import (
	"errors"

	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score every unreviewed resume of a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("jd", "", "job description id (asked interactively when empty)")
	evaluateCmd.Flags().Bool("enqueue", false, "publish jobs to the queue instead of scoring in this process")
	evaluateCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation")
}

func evaluate(cmd *cobra.Command) {
	ctx := cmd.Context()
	e := newEnv()
	defer e.close()

	svc, err := e.newService(ctx)
	if err != nil {
		e.logger.Fatal("building the service", zap.Error(err))
	}

	jdID, err := resolveJobDescription(ctx, e.store, cmd.Flag("jd").Value.String())
	if err != nil {
		e.logger.Fatal("selecting a job description", zap.Error(err))
	}
	log := e.logger.With(zap.String(logger.FieldJD, jdID))

	pending, err := e.store.ListUnreviewedResumes(ctx, jdID)
	if err != nil {
		log.Fatal("listing unreviewed resumes", zap.Error(err))
	}
	if len(pending) == 0 {
		log.Info("exiting", zap.String("reason", "no unreviewed resumes"))
		return
	}

	log.Info("unreviewed resumes found", zap.Int("count", len(pending)))

	if cmd.Flag("auto-approve").Value.String() == "false" {
		if err := confirm(); err != nil {
			if errors.Is(err, errAborted) {
				log.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}

	if cmd.Flag("enqueue").Value.String() == "true" {
		client, err := queue.Dial(e.config.Queue, e.logger.Named("queue"))
		if err != nil {
			log.Fatal("connecting to the queue", zap.Error(err))
		}
		defer client.Close()

		n, err := svc.Enqueue(ctx, jdID, client)
		if err != nil {
			log.Fatal("enqueueing evaluation jobs", zap.Int("published", n), zap.Error(err))
		}
		return
	}

	summary, err := svc.EvaluatePending(ctx, jdID)
	if err != nil {
		log.Fatal("evaluating resumes", zap.Error(err))
	}

	for _, failure := range summary.Failures {
		log.Warn("resume left unreviewed",
			zap.String(logger.FieldResume, failure.ResumeID),
			zap.String(logger.FieldFile, failure.FileName),
			zap.Error(failure.Err),
		)
	}
	if len(summary.Failures) > 0 {
		log.Fatal("some resumes were not evaluated, run the command again to retry them",
			zap.Int("failed", len(summary.Failures)))
	}
}
