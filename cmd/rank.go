package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/filtering"
	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/matching"
)

var rankCmd = &cobra.Command{
	Use:   "rank <job-id>",
	Short: "Rank the candidate pool for a job. Nothing is persisted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntP("limit", "n", matching.SourceShortlistSize, "how many candidates to show, 0 for all")
	rankCmd.Flags().Bool("only-new", false, "hide candidates already matched to the job")
	rankCmd.Flags().Float64("score-above", 0, "hide candidates scoring at or below this value")
	rankCmd.Flags().StringP("exclude-file", "e", "", "file with candidates to hide. Default is unset.")
	rankCmd.Flags().Bool("exclude-shown", false, "append the shown candidates to the exclude file")
	rankCmd.Flags().String("reason", "", "reason stored with --exclude-shown entries")

	viper.BindPFlag("filters.only-new", rankCmd.Flags().Lookup("only-new"))
	viper.BindPFlag("filters.score-above", rankCmd.Flags().Lookup("score-above"))
	viper.BindPFlag("filters.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
}

func rank(cmd *cobra.Command, jobID string) {
	ctx := context.Background()
	a := newApplication(ctx)
	defer a.Close()

	log := a.logger.With(zap.String(logger.FieldJobID, jobID))

	ranked, err := a.service.RankCandidatesForJob(ctx, jobID, 0)
	if err != nil {
		log.Fatal("ranking failed", zap.Error(err))
	}

	candidates, err := a.service.Candidates(ctx)
	if err != nil {
		log.Fatal("loading candidates", zap.Error(err))
	}

	steps, err := filtering.New(a.config.Filters)
	if err != nil {
		log.Fatal("building filters", zap.Error(err))
	}
	for _, st := range filtering.Describe(steps) {
		log.Debug("filter", zap.String("name", st.Name), zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason), zap.Any("details", st.Details))
	}

	shortlist, err := filtering.Run(ctx, filtering.Deps{Logger: log, Candidates: candidates}, steps,
		&filtering.Shortlist{JobID: jobID, Items: ranked})
	if err != nil {
		log.Fatal("filtering failed", zap.Error(err))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	shortlist.Items = matching.Top(shortlist.Items, limit)

	log.Info("ranked candidates", zap.Int("ranked", len(ranked)), zap.Int("shown", shortlist.Len()))

	if err := printJSON(shortlist.Items); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}

	if exclude, _ := cmd.Flags().GetBool("exclude-shown"); exclude {
		reason, _ := cmd.Flags().GetString("reason")
		if err := appendToExcludeFile(a.config.Filters.ExcludeFile, shortlist, reason); err != nil {
			log.Fatal("appending to exclude file", zap.Error(err))
		}
		log.Info("appended to exclude file",
			zap.String("filename", a.config.Filters.ExcludeFile),
			zap.Int("count", shortlist.Len()),
		)
	}
}

func appendToExcludeFile(path string, shortlist *filtering.Shortlist, reason string) error {
	if path == "" {
		return errNoExcludeFile
	}

	excluded, err := filtering.LoadExcludedCandidates(path)
	if err != nil {
		return err
	}

	excluded.Append(filtering.ExcludedFromShortlist(shortlist, reason))
	return excluded.ToFile(path)
}
