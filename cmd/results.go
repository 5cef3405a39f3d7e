package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spigell/resume-evaluator/internal/ranking"
	"github.com/spigell/resume-evaluator/internal/records"
	"github.com/spigell/resume-evaluator/internal/screening"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show ranked evaluations of a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		results(cmd)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().String("jd", "", "job description id (asked interactively when empty)")
	resultsCmd.Flags().String("tier", string(records.TierAll), "TOP, BEST, MODERATE, LOW, VERY_LOW or ALL")
	resultsCmd.Flags().Float64("min-score", 0, "minimum overall score")
	resultsCmd.Flags().Int("top", ranking.DefaultTop, "number of candidates to show")
	resultsCmd.Flags().Bool("all", false, "show every matching candidate and ignore --top")
}

func results(cmd *cobra.Command) {
	ctx := cmd.Context()
	e := newEnv()
	defer e.close()

	tier, err := records.ParseTier(cmd.Flag("tier").Value.String())
	if err != nil {
		e.logger.Fatal("parsing the tier", zap.Error(err))
	}
	minScore, err := cmd.Flags().GetFloat64("min-score")
	if err != nil {
		e.logger.Fatal("parsing the minimum score", zap.Error(err))
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		e.logger.Fatal("parsing the limit", zap.Error(err))
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		e.logger.Fatal("parsing the all flag", zap.Error(err))
	}

	st, err := e.openStore()
	if err != nil {
		e.logger.Fatal("opening the store", zap.Error(err))
	}

	jdID, err := resolveJobDescription(ctx, st, cmd.Flag("jd").Value.String())
	if err != nil {
		e.logger.Fatal("selecting a job description", zap.Error(err))
	}

	evaluations, err := screening.Results(ctx, st, e.logger, jdID, ranking.Options{Tier: tier, MinScore: minScore, Top: top, All: all})
	if err != nil {
		e.logger.Fatal("listing results", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCANDIDATE\tSCORE\tTIER\tRESUME\tEVALUATED")
	for i, ev := range evaluations {
		name := ev.CandidateName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\t%s\n", i+1, name, ev.OverallScore, ev.Tier, ev.ResumeID, ev.EvaluatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}
