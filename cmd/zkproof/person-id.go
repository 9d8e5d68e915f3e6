package zkproof

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/chain"
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
)

func NewPersonIDCmd() *cobra.Command {
	var publicFile, hi, lo string

	cmd := &cobra.Command{
		Use:   "person-id",
		Short: "Derive the ledger person identifier from person-hash signals",
		Example: `  zkpi person-id --public run/public.json
  zkpi person-id --hi 1234 --lo 5678`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if publicFile != "" {
				signals, err := common.ReadPublicSignals(publicFile)
				if err != nil {
					return err
				}
				id, err := chain.PersonIDFromSignals(signals)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
				return nil
			}

			hiV, ok := new(big.Int).SetString(hi, 10)
			if !ok {
				return models.NewValidationError("hi", "%q is not a decimal integer", hi)
			}
			loV, ok := new(big.Int).SetString(lo, 10)
			if !ok {
				return models.NewValidationError("lo", "%q is not a decimal integer", lo)
			}
			id, err := chain.PersonID(hiV, loV)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&publicFile, "public", "", "person-hash public signals file")
	cmd.Flags().StringVar(&hi, "hi", "", "High 128 bits of the person commitment (decimal)")
	cmd.Flags().StringVar(&lo, "lo", "", "Low 128 bits of the person commitment (decimal)")
	cmd.MarkFlagsOneRequired("public", "hi")
	cmd.MarkFlagsRequiredTogether("hi", "lo")
	cmd.MarkFlagsMutuallyExclusive("public", "hi")

	return cmd
}
