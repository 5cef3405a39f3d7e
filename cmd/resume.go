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

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage resumes",
}

var resumeAddCmd = &cobra.Command{
	Use:   "add <files...>",
	Short: "Parse and store resumes for a job description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addResumes(cmd, args)
	},
}

var resumeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored resumes",
	Run: func(cmd *cobra.Command, _ []string) {
		listResumes(cmd)
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.AddCommand(resumeAddCmd, resumeListCmd)

	resumeAddCmd.Flags().String("jd", "", "job description id (asked interactively when empty)")
	resumeListCmd.Flags().String("jd", "", "only resumes of this job description")
}

func addResumes(cmd *cobra.Command, paths []string) {
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

	jdID, err := resolveJobDescription(ctx, e.store, cmd.Flag("jd").Value.String())
	if err != nil {
		e.logger.Fatal("selecting a job description", zap.Error(err))
	}

	results := svc.IngestResumes(ctx, jdID, uploads)

	failed := 0
	for _, result := range results {
		if result.Status == screening.StatusFailed {
			failed++
		}
		logResult(e.logger.With(zap.String(logger.FieldJD, jdID)), result)
	}

	if failed > 0 {
		e.logger.Fatal("some resumes were not stored", zap.Int("failed", failed))
	}
}

func listResumes(cmd *cobra.Command) {
	ctx := cmd.Context()
	e := newEnv()
	defer e.close()

	st, err := e.openStore()
	if err != nil {
		e.logger.Fatal("opening the store", zap.Error(err))
	}

	resumes, err := st.ListResumes(ctx, cmd.Flag("jd").Value.String())
	if err != nil {
		e.logger.Fatal("listing resumes", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tJD\tCANDIDATE\tFILE\tSTATUS")
	for _, r := range resumes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.JDID, r.Name(), r.FileName, r.Status)
	}
	w.Flush()
}
