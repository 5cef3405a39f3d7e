package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spigell/resume-evaluator/internal/logger"
	"github.com/spigell/resume-evaluator/internal/screening"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jdCmd = &cobra.Command{
	Use:   "jd",
	Short: "Manage job descriptions",
}

var jdAddCmd = &cobra.Command{
	Use:   "add <files...>",
	Short: "Parse and store job descriptions (pdf, docx, html or text)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addJobDescriptions(cmd, args)
	},
}

var jdListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored job descriptions",
	Run: func(cmd *cobra.Command, _ []string) {
		listJobDescriptions(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jdCmd)
	jdCmd.AddCommand(jdAddCmd, jdListCmd)
}

func addJobDescriptions(cmd *cobra.Command, paths []string) {
	ctx := cmd.Context()
	e := newEnv()
	defer e.close()

	uploads, err := readUploads(paths)
	if err != nil {
		e.logger.Fatal("reading files", zap.Error(err))
	}

	svc, err := e.newService(ctx)
	if err != nil {
		e.logger.Fatal("building the service", zap.Error(err))
	}

	failed := 0
	for _, upload := range uploads {
		result, err := svc.IngestJobDescription(ctx, upload)
		if err != nil {
			failed++
			e.logger.Error("job description rejected", zap.String(logger.FieldFile, upload.Name), zap.Error(err))
			continue
		}
		logResult(e.logger, result)
	}

	if failed > 0 {
		e.logger.Fatal("some job descriptions were not stored", zap.Int("failed", failed))
	}
}

func listJobDescriptions(cmd *cobra.Command) {
	ctx := cmd.Context()
	e := newEnv()
	defer e.close()

	st, err := e.openStore()
	if err != nil {
		e.logger.Fatal("opening the store", zap.Error(err))
	}

	jds, err := st.ListJobDescriptions(ctx)
	if err != nil {
		e.logger.Fatal("listing job descriptions", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tROLE\tFILE\tCREATED")
	for _, jd := range jds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", jd.ID, jd.Role, jd.FileName, jd.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func logResult(l *zap.Logger, result screening.IngestResult) {
	switch result.Status {
	case screening.StatusAccepted:
		l.Info("file accepted", zap.String(logger.FieldFile, result.FileName), zap.String("id", result.ID))
	case screening.StatusSkipped:
		l.Info("file skipped",
			zap.String(logger.FieldFile, result.FileName),
			zap.String("reason", "duplicate"),
			zap.String("existing_file", result.ExistingFile),
		)
	case screening.StatusFailed:
		l.Error("file rejected", zap.String(logger.FieldFile, result.FileName), zap.Error(result.Err))
	}
}
