package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbtrawl/dbtrawl/internal/runlog"
)

var logPath string

func init() {
	logVerifyCmd.Flags().StringVar(&logPath, "log", "audit_runs.jsonl", "run log to verify")
	logCmd.AddCommand(logVerifyCmd)
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the hash-chained audit run log",
}

var logVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate the run log's hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := runlog.Verify(logPath)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if !result.Valid {
			return fmt.Errorf("run log %s failed verification", logPath)
		}
		return nil
	},
}
