package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zezin-crm/client/internal/app"
)

// @title        Zezin Session API
// @version      1.0
// @description  Conversation session client for the Zezin CRM assistant.
// @host         localhost:8000
// @BasePath     /api
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	code := 0

	root := &cobra.Command{
		Use:           "zezin",
		Short:         "Conversation session client for the Zezin CRM assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			code = app.Run()
		},
	}

	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question in the remembered thread and print the answer",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			code = app.Ask(strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	root.AddCommand(serve, ask)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 2
	}
	return code
}
