package zkproof

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/oracle"
)

func NewCompareCmd() *cobra.Command {
	var expectedFile, actualFile string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two public signal files index by index",
		Long: `Compare an expected public signal file with the one written by the prover.
Both files may hold a bare array or {"publicSignals": [...]}. Exits non-zero on
any difference.`,
		Example: `  zkpi compare --expected run/expected.json --actual run/public.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := common.ReadPublicSignals(expectedFile)
			if err != nil {
				return err
			}
			actual, err := common.ReadPublicSignals(actualFile)
			if err != nil {
				return err
			}

			res := oracle.Compare(expected, actual)
			if res.Match {
				fmt.Fprintf(cmd.OutOrStdout(), "[OK] %d public signals match\n", len(actual))
				return nil
			}
			for _, m := range res.Mismatches {
				fmt.Fprintf(cmd.OutOrStdout(), "[X] %s\n", m)
			}
			return &models.SignalMismatchError{Circuit: actualFile, Mismatches: res.Mismatches}
		},
	}

	cmd.Flags().StringVar(&expectedFile, "expected", "", "Expected public signals")
	cmd.Flags().StringVar(&actualFile, "actual", "", "Actual public signals")
	_ = cmd.MarkFlagRequired("expected")
	_ = cmd.MarkFlagRequired("actual")

	return cmd
}
