package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/submission"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <essay-file>",
	Short: "Submit a writing answer for two-pass grading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read essay: %w", err)
		}

		taskType, _ := cmd.Flags().GetString("task-type")
		promptCtx, _ := cmd.Flags().GetString("prompt")
		force, _ := cmd.Flags().GetBool("force")
		wait, _ := cmd.Flags().GetDuration("wait")

		a, err := buildApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sub := &submission.Submission{QuestionType: taskType}
		in := grading.EssayInput{
			PromptContext: promptCtx,
			EssayText:     string(text),
			TaskType:      taskType,
			Skill:         grading.SkillWriting,
		}

		sub, err = a.service.SubmitWriting(ctx, sub, in, force)
		if err != nil {
			return err
		}

		printSubmission(sub)

		// With the in-process queue, optionally wait for the detail pass to
		// land before exiting.
		if wait > 0 && a.mem != nil {
			deadline := time.Now().Add(wait)
			for time.Now().Before(deadline) {
				time.Sleep(200 * time.Millisecond)
				cur, err := a.store.Submissions().Get(ctx, sub.ID)
				if err != nil {
					continue
				}
				if cur.ScoringState == submission.ScoringDetailReady || cur.Status == submission.StatusFailed {
					fmt.Println()
					printSubmission(cur)
					return nil
				}
			}
			fmt.Fprintln(os.Stderr, "detail grading still pending; check later with `gradecore submission view`")
		}
		return nil
	},
}

func init() {
	gradeCmd.Flags().String("task-type", "essay", "Question type (essay, letter, report)")
	gradeCmd.Flags().String("prompt", "", "Prompt context shown to the grader")
	gradeCmd.Flags().Bool("force", false, "Re-grade even when a result for identical content exists")
	gradeCmd.Flags().Duration("wait", 0, "How long to wait for the detail pass (0 = don't wait)")
}

func printSubmission(sub *submission.Submission) {
	fmt.Printf("Submission %s  [%s / scoring=%s taxonomy=%s]\n",
		sub.ID, sub.Status, sub.ScoringState, sub.TaxonomyState)

	if sub.FastResult != nil {
		tag := "provisional"
		if sub.ScoringState == submission.ScoringDetailReady {
			tag = "reconciled"
		}
		fmt.Printf("Band: %.1f (%s)\n", sub.Score, tag)
		for crit, score := range sub.FastResult.CriteriaScores {
			fmt.Printf("  %-28s %.1f\n", crit, score)
		}
		if sub.FastResult.AdjustedByDetail {
			fmt.Println("  (provisional score was lowered by the detailed grade)")
		}
	} else {
		fmt.Println("No provisional score yet.")
	}

	if sub.DetailResult != nil {
		issues := sub.DetailResult.Issues()
		fmt.Printf("Detail issues: %d", len(issues))
		if len(sub.TaxonomyCodes) > 0 {
			fmt.Print("  codes:")
			for _, cc := range sub.TaxonomyCodes {
				fmt.Printf(" %s(%d)", cc.Code, cc.Count)
			}
		}
		fmt.Println()
	}
}
