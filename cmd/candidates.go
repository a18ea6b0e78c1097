package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/recruiting"
	"github.com/spigell/talent-matcher/internal/service"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Manage the candidate pool",
}

var candidatesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a candidate by hand",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		flags := cmd.Flags()
		in := service.NewCandidate{}
		in.Name, _ = flags.GetString("name")
		in.Email, _ = flags.GetString("email")
		in.CurrentRole, _ = flags.GetString("current-role")
		in.Skills, _ = flags.GetString("skills")
		in.YearsExperience, _ = flags.GetString("years-experience")
		in.Education, _ = flags.GetString("education")
		in.LastCompany, _ = flags.GetString("last-company")
		in.ResumeSummary, _ = flags.GetString("resume-summary")

		candidate, err := a.service.AddCandidate(ctx, in)
		if err != nil {
			a.logger.Fatal("adding candidate", zap.Error(err))
		}

		if err := printJSON(candidate); err != nil {
			a.logger.Fatal("printing result", zap.Error(err))
		}
	},
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates, optionally by status or matched job",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		statusName, _ := cmd.Flags().GetString("status")
		jobID, _ := cmd.Flags().GetString("job")
		report, _ := cmd.Flags().GetBool("report")

		var (
			list []*recruiting.Candidate
			err  error
		)
		switch {
		case jobID != "":
			list, err = a.service.CandidatesForJob(ctx, jobID)
		case statusName != "":
			status, perr := recruiting.ParseStatus(statusName)
			if perr != nil {
				a.logger.Fatal("parsing status", zap.Error(perr), zap.Any("known", recruiting.Statuses))
			}
			list, err = a.service.CandidatesByStatus(ctx, status)
		default:
			var all *recruiting.Candidates
			all, err = a.service.Candidates(ctx)
			if all != nil {
				list = all.Items
			}
		}
		if err != nil {
			a.logger.Fatal("listing candidates", zap.String(logger.FieldJobID, jobID), zap.Error(err))
		}

		// Status filter also narrows a job listing.
		if jobID != "" && statusName != "" {
			status, _ := recruiting.ParseStatus(statusName)
			list = (&recruiting.Candidates{Items: list}).WithStatus(status)
		}

		a.logger.Info("listing candidates", zap.Int("count", len(list)))

		if report {
			pretty, _ := json.MarshalIndent((&recruiting.Candidates{Items: list}).ReportByStatus(), "", "  ")
			a.logger.Info(string(pretty))
			return
		}

		if err := printJSON(list); err != nil {
			a.logger.Fatal("printing result", zap.Error(err))
		}
	},
}

var candidatesStatusCmd = &cobra.Command{
	Use:   "status <candidate-id> <status>",
	Short: "Move a candidate to the next pipeline status or reject them",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		status, err := recruiting.ParseStatus(args[1])
		if err != nil {
			a.logger.Fatal("parsing status", zap.Error(err), zap.Any("known", recruiting.Statuses))
		}

		candidate, err := a.service.UpdateStatus(ctx, args[0], status)
		if err != nil {
			a.logger.Fatal("updating status", zap.String(logger.FieldCandidateID, args[0]), zap.Error(err))
		}

		if err := printJSON(candidate); err != nil {
			a.logger.Fatal("printing result", zap.Error(err))
		}
	},
}

var candidatesJobsCmd = &cobra.Command{
	Use:   "jobs <candidate-id>",
	Short: "Find jobs whose profile is close to the candidate profile by embeddings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		log := a.logger.With(zap.String(logger.FieldCandidateID, args[0]))
		warnWithoutEmbeddings(log, a.service)

		track, _ := cmd.Flags().GetBool("track")
		find := a.service.MatchingJobsForCandidate
		if track {
			find = a.service.TrackMatchingJobs
		}

		matches, err := find(ctx, args[0])
		if err != nil {
			log.Fatal("finding matching jobs", zap.Error(err))
		}

		log.Info("found matching jobs", zap.Int("count", len(matches)), zap.Bool("track", track))
		if err := printJSON(matches); err != nil {
			log.Fatal("printing result", zap.Error(err))
		}
	},
}

var candidatesMatchingCmd = &cobra.Command{
	Use:   "matching <job-id>",
	Short: "Find candidates whose profile is close to the job profile by embeddings",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		log := a.logger.With(zap.String(logger.FieldJobID, args[0]))
		warnWithoutEmbeddings(log, a.service)

		matches, err := a.service.MatchingCandidatesForJob(ctx, args[0])
		if err != nil {
			log.Fatal("finding matching candidates", zap.Error(err))
		}

		log.Info("found matching candidates", zap.Int("count", len(matches)))
		if err := printJSON(matches); err != nil {
			log.Fatal("printing result", zap.Error(err))
		}
	},
}

func warnWithoutEmbeddings(log *zap.Logger, svc *service.Service) {
	if !svc.EmbeddingsEnabled() {
		log.Warn("profile matching needs an embedding backend, nothing will match",
			zap.String("hint", "set embeddings.enabled"))
	}
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	candidatesCmd.AddCommand(candidatesAddCmd, candidatesListCmd, candidatesStatusCmd, candidatesJobsCmd, candidatesMatchingCmd)

	candidatesJobsCmd.Flags().Bool("track", false, "add the matched jobs to the candidate's matched jobs")

	add := candidatesAddCmd.Flags()
	add.String("name", "", "full name (required)")
	add.String("email", "", "contact email")
	add.String("current-role", "", "current job title")
	add.String("skills", "", "comma separated skills")
	add.String("years-experience", "", "years of experience, e.g. \"5\" or \"5+ years\"")
	add.String("education", "", "highest education")
	add.String("last-company", "", "most recent employer")
	add.String("resume-summary", "", "free text resume summary used by screening")
	_ = candidatesAddCmd.MarkFlagRequired("name")

	candidatesListCmd.Flags().String("status", "", "only candidates in this pipeline status")
	candidatesListCmd.Flags().String("job", "", "only candidates matched to this job id")
	candidatesListCmd.Flags().Bool("report", false, "log a report grouped by status instead of printing JSON")
}
