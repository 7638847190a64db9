package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X .../cmd/server/cmd.version=..."
var version = "dev"

type rootFlags struct {
	configPath string
	mock       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "ocr-wrapper",
		Short:         "Multi-provider OCR service: upload images or PDFs, get text back as JSON or TXT",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML config (env CONFIG_PATH)")
	root.PersistentFlags().BoolVar(&flags.mock, "mock", false, "register the in-process mock provider")

	serve := newServeCmd(flags)
	root.AddCommand(serve, newModelsCmd(flags), newVersionCmd())

	// serve is the default
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func Execute(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
