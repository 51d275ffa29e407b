/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/config"
	"pump-launcher/internal/svc"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pump-launcher",
	Short: "pump-launcher launches tokens on pump.fun",
	Long: `pump-launcher creates tokens on the pump.fun bonding curve from a token table,
paying from a locally stored keypair, and prints launch statistics.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "etc/launcher.yaml", "set config file")
}

// mustServiceContext loads .env, the config file and logging, then wires the services.
func mustServiceContext() *svc.ServiceContext {
	// .env is optional, the environment may already carry HELIUS_RPC_URL
	_ = godotenv.Load()

	c := config.MustLoad(cfgFile)
	logx.MustSetup(c.Log.LogConf)

	if !c.Banner.Disable {
		figure.NewColorFigure(c.Banner.Text, c.Banner.FontName, c.Banner.Color, true).Print()
	}
	return svc.NewServiceContext(c)
}
