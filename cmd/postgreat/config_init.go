package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// createConfigCommand groups configuration-file helpers under "config".
func createConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Instance configuration file helpers",
	}
	cmd.AddCommand(createConfigInitCommand())
	return cmd
}

// createConfigInitCommand writes a starter instance configuration file the
// user can edit, the same "generate something to start from" shape as the
// teacher's config generate command, here emitting YAML instead of
// postgresql.conf text.
func createConfigInitCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter instance configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sample := Config{
				Instances: []InstanceConfig{
					{
						Name:           "primary",
						DSN:            "host=localhost port=5432 user=postgres dbname=postgres sslmode=disable",
						Tier:           "medium",
						ComputeProfile: "",
						WorkloadHint:   "oltp",
					},
				},
				Format:        "markdown",
				WorkloadLimit: 20,
				SeverityFloor: "info",
			}

			data, err := yaml.Marshal(sample)
			if err != nil {
				return fmt.Errorf("failed to marshal starter config: %w", err)
			}

			if outPath == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Printf("Wrote starter configuration to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Path to write the starter file (default: stdout)")
	return cmd
}
