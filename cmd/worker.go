package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skilldrill/gradecore/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job worker (detail grading, taxonomy enrichment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.nc == nil {
			return fmt.Errorf("worker requires a NATS transport; set nats_url in the config or GRADECORE_NATS_URL")
		}

		detailSub, err := a.nc.Subscribe(ctx, queue.JobDetailGrading, a.service.HandleDetailJob)
		if err != nil {
			return fmt.Errorf("subscribe detail jobs: %w", err)
		}
		defer detailSub.Unsubscribe()

		taxSub, err := a.nc.Subscribe(ctx, queue.JobTaxonomyEnrich, a.service.HandleTaxonomyJob)
		if err != nil {
			return fmt.Errorf("subscribe taxonomy jobs: %w", err)
		}
		defer taxSub.Unsubscribe()

		fmt.Println("worker started; waiting for jobs")
		<-ctx.Done()
		fmt.Println("worker shutting down")
		return nil
	},
}
