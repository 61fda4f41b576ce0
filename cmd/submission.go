package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilldrill/gradecore/internal/config"
	"github.com/skilldrill/gradecore/internal/store"
)

var submissionCmd = &cobra.Command{
	Use:   "submission",
	Short: "Inspect stored submissions",
}

var submissionViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one submission as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sub, err := st.Submissions().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(sub, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	submissionCmd.AddCommand(submissionViewCmd)
}

// openStore opens just the database, for read-only inspection commands that
// don't need the full pipeline.
func openStore(cmd *cobra.Command) (*store.Store, error) {
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
	return store.Open(dbPath)
}
