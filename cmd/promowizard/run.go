package main

import (
	"context"

	"github.com/aretw0/promowizard/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wizard interactively in the terminal",
	Long: `Starts a wizard session in the terminal. Type "quit" to leave; with a persistent
session store (file or redis) the session can be resumed with --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		account, _ := cmd.Flags().GetString("account")
		sessionID, _ := cmd.Flags().GetString("session")
		return cli.Run(ctx, app, cli.TerminalOptions(cli.RunOptions{
			AccountID: account,
			SessionID: sessionID,
		}))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("account", "", "Record the promotion is created for")
	runCmd.Flags().String("session", "", "Resume a persisted session")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
