// Command newsdeskctl runs maintenance tasks against the newsdesk stores:
// seeding fixtures, creating the first admin and approving authors.
package main

import (
	"context"
	"os"

	"github.com/newsdesk/newsdesk/internal/app"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/spf13/cobra"
)

type appKey struct{}

var rootCmd = &cobra.Command{
	Use:           "newsdeskctl",
	Short:         "Administer a newsdesk installation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if a := appFrom(cmd); a != nil {
			a.Close(context.Background())
		}
	},
}

func appFrom(cmd *cobra.Command) *app.App {
	a, _ := cmd.Context().Value(appKey{}).(*app.App)
	return a
}

func init() {
	rootCmd.AddCommand(seedCmd, createAdminCmd, approveCmd)
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Errorf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}
