package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbtrawl/dbtrawl/internal/auditor"
	"github.com/dbtrawl/dbtrawl/internal/dsconfig"
	"github.com/dbtrawl/dbtrawl/internal/watch"
)

var watchPoll bool

func init() {
	watchCmd.Flags().StringVar(&auditDatasources, "datasources", "datasources.txt",
		"file listing datasources, one 'name,host,port,user,password[,driver]' per line")
	watchCmd.Flags().StringVar(&auditConfig, "config", "", "audit config YAML")
	watchCmd.Flags().StringVar(&auditRules, "rules", "", "rule set YAML (overrides config)")
	watchCmd.Flags().StringVar(&auditOut, "out", "", "report output directory (overrides config)")
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false, "poll for changes instead of using fsnotify")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the audit whenever the datasource list or rules change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		run := func() {
			// Reload everything: a changed file is the reason we are here.
			deps, datasources, err := buildDeps()
			if err != nil {
				fmt.Fprintf(os.Stderr, "dbtrawl: %v\n", err)
				return
			}
			paths := auditor.RunAll(ctx, datasources, deps)
			if deps.Alerts != nil {
				deps.Alerts.Wait()
			}
			for _, p := range paths {
				fmt.Println(p)
			}
		}

		run()

		files := []string{auditDatasources}
		if auditRules != "" {
			files = append(files, auditRules)
		} else if cfg, err := dsconfig.LoadConfig(auditConfig); err == nil && cfg.Rules != "" {
			files = append(files, cfg.Rules)
		}

		w, err := watch.New(files, run)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "dbtrawl: watching %v\n", files)
		if watchPoll {
			return w.Poll(ctx, 0)
		}
		return w.Run(ctx)
	},
}
