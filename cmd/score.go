package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
)

var scoreCmd = &cobra.Command{
	Use:   "score <candidate-id> <job-id>",
	Short: "Score one candidate against one job by skills and experience",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		result, err := a.service.ScoreCandidateForJob(ctx, args[0], args[1])
		if err != nil {
			a.logger.Fatal("scoring failed", append(logger.MatchFields(args[0], args[1]), zap.Error(err))...)
		}

		if err := printJSON(result); err != nil {
			a.logger.Fatal("printing result", zap.Error(err))
		}
	},
}

var screenCmd = &cobra.Command{
	Use:   "screen <candidate-id> <job-id>",
	Short: "Screen one candidate for a job by resume meaning and record the outcome",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		screening, err := a.service.ScreenCandidate(ctx, args[0], args[1])
		if err != nil {
			a.logger.Fatal("screening failed", append(logger.MatchFields(args[0], args[1]), zap.Error(err))...)
		}

		if err := printJSON(screening); err != nil {
			a.logger.Fatal("printing result", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(screenCmd)
}
