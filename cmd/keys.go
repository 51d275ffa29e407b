package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/logic/wallet"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys [name...]",
	Short: "print stored public keys, creating missing keypairs",
	Long: `keys prints the public key of each named keypair in the keystore. Without
arguments it prints the payer and mint keys. Fund the payer before launching.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcCtx := mustServiceContext()
		defer logx.Close()

		return wallet.NewWallet(cmd.Context(), svcCtx).Keys(cmd.OutOrStdout(), args...)
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
