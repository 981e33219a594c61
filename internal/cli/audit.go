package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbtrawl/dbtrawl/internal/alert"
	"github.com/dbtrawl/dbtrawl/internal/auditor"
	"github.com/dbtrawl/dbtrawl/internal/dsconfig"
	"github.com/dbtrawl/dbtrawl/internal/rules"
)

var (
	auditDatasources string
	auditConfig      string
	auditRules       string
	auditOut         string
)

func init() {
	auditCmd.Flags().StringVar(&auditDatasources, "datasources", "datasources.txt",
		"file listing datasources, one 'name,host,port,user,password[,driver]' per line")
	auditCmd.Flags().StringVar(&auditConfig, "config", "", "audit config YAML (rules path, output dir, alerts)")
	auditCmd.Flags().StringVar(&auditRules, "rules", "", "rule set YAML (overrides config)")
	auditCmd.Flags().StringVar(&auditOut, "out", "", "report output directory (overrides config)")
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit all configured datasources and write reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, datasources, err := buildDeps()
		if err != nil {
			return err
		}

		paths := auditor.RunAll(cmd.Context(), datasources, deps)
		if deps.Alerts != nil {
			deps.Alerts.Wait()
		}

		for _, p := range paths {
			fmt.Println(p)
		}
		fmt.Fprintf(os.Stderr, "dbtrawl: %d of %d datasources reported\n", len(paths), len(datasources))
		return nil
	},
}

// buildDeps loads the config, rules, and datasource list shared by the
// audit and watch commands. Only an unreadable datasource file is fatal.
func buildDeps() (auditor.Deps, []dsconfig.Datasource, error) {
	cfg, err := dsconfig.LoadConfig(auditConfig)
	if err != nil {
		return auditor.Deps{}, nil, err
	}
	if auditRules != "" {
		cfg.Rules = auditRules
	}
	if auditOut != "" {
		cfg.OutputDir = auditOut
	}

	text, err := os.ReadFile(auditDatasources)
	if err != nil {
		return auditor.Deps{}, nil, fmt.Errorf("read datasources: %w", err)
	}
	datasources := dsconfig.ParseDatasources(string(text), os.Stderr)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return auditor.Deps{}, nil, fmt.Errorf("create output dir: %w", err)
	}

	deps := auditor.Deps{
		Rules:  rules.Load(cfg.Rules, os.Stderr),
		OutDir: cfg.OutputDir,
		RunLog: cfg.RunLog,
		Alerts: alert.NewDispatcher(cfg.Alerts, os.Stderr),
		Log:    os.Stderr,
	}
	return deps, datasources, nil
}
