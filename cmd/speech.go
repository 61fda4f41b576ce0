package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skilldrill/gradecore/internal/speech"
	"github.com/skilldrill/gradecore/internal/submission"
)

var speechCmd = &cobra.Command{
	Use:   "speech <transcript-file>",
	Short: "Submit a speaking answer for provisional heuristic scoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		transcript, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}

		pauseCount, _ := cmd.Flags().GetInt("pauses")
		pauseMs, _ := cmd.Flags().GetFloat64("pause-ms")
		wpm, _ := cmd.Flags().GetFloat64("wpm")
		duration, _ := cmd.Flags().GetFloat64("duration")
		force, _ := cmd.Flags().GetBool("force")

		a, err := buildApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		in := speech.Input{
			FallbackTranscript: string(transcript),
			Pauses: speech.PauseMetrics{
				PauseCount:   pauseCount,
				TotalPauseMs: pauseMs,
			},
			WPM:         wpm,
			DurationSec: duration,
		}

		sub, err := a.service.SubmitSpeech(ctx, &submission.Submission{}, in, force)
		if err != nil {
			return err
		}

		printSubmission(sub)
		return nil
	},
}

func init() {
	speechCmd.Flags().Int("pauses", 0, "Number of detected pauses")
	speechCmd.Flags().Float64("pause-ms", 0, "Total pause duration in milliseconds")
	speechCmd.Flags().Float64("wpm", 0, "Measured words per minute")
	speechCmd.Flags().Float64("duration", 0, "Recording length in seconds")
	speechCmd.Flags().Bool("force", false, "Re-grade even when a result for identical content exists")
}
