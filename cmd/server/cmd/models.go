package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newModelsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models <provider>",
		Short: "Print the model catalog of a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(a.logger.WithContext(cmd.Context()), 30*time.Second)
			defer cancel()

			models, err := a.registry.ListModels(ctx, args[0])
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}
			for _, m := range models {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}
