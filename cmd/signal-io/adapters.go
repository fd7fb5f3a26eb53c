package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"signal-io/internal/adapter"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List the registered adapters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range adapter.DefaultRegistry().Names() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adaptersCmd)
}
