package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skilldrill/gradecore/internal/config"
	"github.com/skilldrill/gradecore/internal/grading"
	"github.com/skilldrill/gradecore/internal/llm"
	"github.com/skilldrill/gradecore/internal/queue"
	"github.com/skilldrill/gradecore/internal/speech"
	"github.com/skilldrill/gradecore/internal/store"
	"github.com/skilldrill/gradecore/internal/submission"
	"github.com/skilldrill/gradecore/internal/taxonomy"
)

// app holds the wired pipeline for one CLI invocation.
type app struct {
	cfg     config.Config
	store   *store.Store
	service *submission.Service

	mem *queue.Memory // in-process transport, nil when NATS is configured
	nc  *queue.NATS
}

// buildApp loads config, opens the store, and wires the grading pipeline.
// LLM providers are optional: without credentials the fast pass is skipped
// and detail jobs fail with a clear error.
func buildApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{cfg: cfg, store: st}

	var fast submission.FastGrader
	var detail submission.DetailGrader
	llmCfg := llm.ConfigFromEnv()
	if llmCfg.Configured() {
		fastProvider, err := llm.NewProviderChain(ctx, llmCfg, st.Events(), cfg.Grading.FastChain()...)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("build fast provider: %w", err)
		}
		detailProvider, err := llm.NewProviderChain(ctx, llmCfg, st.Events(), cfg.Grading.DetailChain()...)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("build detail provider: %w", err)
		}
		fast = grading.NewFastAdapter(fastProvider, grading.MaxBand, grading.FastConfig{Passes: cfg.Grading.FastPasses})
		detail = grading.NewDetailAdapter(detailProvider, grading.DefaultDetailConfig())
	} else {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; submissions will be stored without AI grades.")
	}

	var base queue.Queue
	if cfg.NATSURL != "" {
		nc, err := queue.NewNATS(cfg.NATSURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connect NATS: %w", err)
		}
		a.nc = nc
		base = nc
	} else {
		a.mem = queue.NewMemory(0)
		base = a.mem
	}
	jobs := queue.NewKeyed(base)

	registry := taxonomy.DefaultRegistry()
	classifier := taxonomy.NewInlineClassifier(registry)
	scheduler := taxonomy.NewScheduler(jobs, classifier)

	pipeline := speech.NewPipeline(nil, speech.DefaultPipelineConfig())

	a.service = submission.NewService(st.Submissions(), fast, detail, pipeline,
		jobs, scheduler, classifier, submission.DefaultConfig())

	if a.mem != nil {
		a.mem.RegisterHandler(queue.JobDetailGrading, a.service.HandleDetailJob)
		a.mem.RegisterHandler(queue.JobTaxonomyEnrich, a.service.HandleTaxonomyJob)
		a.mem.Start(ctx)
	}

	return a, nil
}

func (a *app) Close() {
	if a.mem != nil {
		a.mem.Close()
	}
	if a.nc != nil {
		a.nc.Close()
	}
	a.store.Close()
}
