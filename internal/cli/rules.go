package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbtrawl/dbtrawl/internal/rules"
)

var (
	rulesFile  string
	rulesForce bool
)

func init() {
	rulesShowCmd.Flags().StringVar(&rulesFile, "rules", "", "rule set YAML to load")
	rulesInitCmd.Flags().StringVar(&rulesFile, "rules", "rules.yaml", "file to write")
	rulesInitCmd.Flags().BoolVar(&rulesForce, "force", false, "overwrite an existing file")
	rulesCmd.AddCommand(rulesShowCmd, rulesInitCmd)
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect or initialize the sensitive-data rule set",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active rule set as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		set := rules.Load(rulesFile, os.Stderr)
		out, err := yaml.Marshal(set)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var rulesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the built-in default rule set to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rulesForce {
			if _, err := os.Stat(rulesFile); err == nil {
				return fmt.Errorf("%s exists, use --force to overwrite", rulesFile)
			}
		}
		if err := os.WriteFile(rulesFile, []byte(rules.DefaultYAML()), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", rulesFile)
		return nil
	},
}
