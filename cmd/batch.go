package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/recruiting"
	"github.com/spigell/talent-matcher/internal/service"
)

const (
	PromptYes            = "Yes"
	PromptNo             = "No"
	PromptReportByStatus = "Report by status"
	PromptResultsToFile  = "Dump results to file"
	PromptShowResults    = "Show results"
	autoApproveFlag      = "auto-approve"
	autoApproveFlagHelp  = "do not ask for confirmation before saving"
)

var (
	errExit          = errors.New("exit requested")
	errCommitted     = errors.New("batch saved")
	errNoExcludeFile = errors.New("exclude file is not configured (set filters.exclude-file or --exclude-file)")
)

var prompt = promptui.Select{
	Label: "Save changes?",
	Items: []string{PromptYes, PromptNo, PromptShowResults, PromptReportByStatus, PromptResultsToFile},
}

var screenBatchCmd = &cobra.Command{
	Use:   "screen-batch <job-id>",
	Short: "Screen the best candidates already matched to a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd, args[0], func(ctx context.Context, svc *service.Service, jobID string) (*service.Batch, error) {
			return svc.PrepareBatchScreen(ctx, jobID)
		})
	},
}

var sourceCmd = &cobra.Command{
	Use:   "source <job-id>",
	Short: "Score the whole candidate pool for a job and track every match",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd, args[0], func(ctx context.Context, svc *service.Service, jobID string) (*service.Batch, error) {
			return svc.PrepareBatchSource(ctx, jobID)
		})
	},
}

func init() {
	rootCmd.AddCommand(screenBatchCmd)
	rootCmd.AddCommand(sourceCmd)

	screenBatchCmd.Flags().BoolP(autoApproveFlag, "y", false, autoApproveFlagHelp)
	sourceCmd.Flags().BoolP(autoApproveFlag, "y", false, autoApproveFlagHelp)
}

type prepareFunc func(ctx context.Context, svc *service.Service, jobID string) (*service.Batch, error)

// runBatch prepares a batch, lets the user inspect it and saves it on approval.
func runBatch(cmd *cobra.Command, jobID string, prepare prepareFunc) {
	ctx := context.Background()
	a := newApplication(ctx)
	defer a.Close()

	batch, err := prepare(ctx, a.service, jobID)
	if err != nil {
		a.logger.Fatal("preparing batch", zap.String(logger.FieldJobID, jobID), zap.Error(err))
	}

	log := a.logger.With(
		zap.String(logger.FieldRunID, batch.RunID),
		zap.String(logger.FieldJobID, batch.Job.ID),
		zap.String("job_title", batch.Job.Title),
	)

	if batch.Changed() == 0 {
		log.Info("nothing to save", zap.Int("results", len(batch.Results)))
		if err := printJSON(batch.Results); err != nil {
			log.Fatal("printing result", zap.Error(err))
		}
		return
	}

	autoApprove, _ := cmd.Flags().GetBool(autoApproveFlag)

	action := PromptYes
	for {
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				log.Fatal("exiting", zap.Error(err))
			}
		}

		log.Info("current batch", zap.Int("results", len(batch.Results)), zap.Int("changed", batch.Changed()))

		if err := handleAction(ctx, action, log, batch); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			if errors.Is(err, errCommitted) {
				if err := printJSON(batch.Results); err != nil {
					log.Fatal("printing result", zap.Error(err))
				}
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, log *zap.Logger, batch *service.Batch) error {
	switch action {
	case PromptYes:
		if err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("saving candidates: %w", err)
		}
		return errCommitted
	case PromptNo:
		log.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptShowResults:
		pretty, _ := json.MarshalIndent(batch.Results, "", "  ")
		log.Info(string(pretty), zap.Int("results count", len(batch.Results)))
		return nil
	case PromptReportByStatus:
		pretty, _ := json.MarshalIndent(batch.Candidates().ReportByStatus(), "", "  ")
		log.Info(string(pretty), zap.Int("candidates count", batch.Candidates().Len()))
		return nil
	case PromptResultsToFile:
		filename, err := recruiting.DumpToTmpFile(batch.Kind+"_results_*.json", batch.Results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		log.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
