package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"pump-launcher/internal/logic/wallet"
)

var (
	balanceKey  string
	balanceMint string
)

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "show the SOL and token balance of a stored key",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcCtx := mustServiceContext()
		defer logx.Close()

		key := balanceKey
		if key == "" {
			key = svcCtx.Config.Launch.PayerKey
		}
		return wallet.NewWallet(cmd.Context(), svcCtx).Balance(cmd.OutOrStdout(), key, balanceMint)
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVarP(&balanceKey, "key", "k", "", "keystore entry, defaults to the payer key")
	balanceCmd.Flags().StringVarP(&balanceMint, "mint", "m", "", "also show the balance of this token")
}
