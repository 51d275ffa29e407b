package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/logic/launch"
)

// launchCmd represents the launch command
var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "create every token of the token table once",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcCtx := mustServiceContext()
		defer logx.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := launch.NewLaunch(ctx, svcCtx).Launch(cmd.OutOrStdout())
		if err != nil {
			logx.Errorf("launch failed: %v", err)
			return err
		}
		logx.Infof("launch %s", summary.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
}
