package zkproof

import (
	"encoding/json"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/chain"
	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	"github.com/deepfamily/identity-zk/common"
)

func NewSignalsCmd() *cobra.Command {
	var (
		outputDir    string
		writeWitness bool
	)

	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Derive the public signals a proof for an identity must carry",
		Long: `Compute the expected public signals directly from the identity, without
the proving toolchain. With --out the witness and expected signals are written
as input.json and expected.json.`,
		Example: `  zkpi signals person --demo
  zkpi signals name --name "Alice Smith" --minter 1 --out ./run`,
	}
	cmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "Directory receiving input.json and expected.json")
	cmd.PersistentFlags().BoolVar(&writeWitness, "witness", false, "Also print the witness")

	cmd.AddCommand(subjectCommands("Derive signals", func(c *cobra.Command, circuit string, request []byte) error {
		out := c.OutOrStdout()
		info, err := lookupCircuit(circuit)
		if err != nil {
			return err
		}
		witness, expected, err := info.InputParser.Parse(request)
		if err != nil {
			return err
		}

		if outputDir != "" {
			if err := common.WriteJSON(filepath.Join(outputDir, common.WitnessFile), witness); err != nil {
				return err
			}
			if err := common.WriteJSON(filepath.Join(outputDir, "expected.json"), expected); err != nil {
				return err
			}
		}

		if writeWitness {
			data, err := json.MarshalIndent(witness, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		}

		for i, s := range expected {
			fmt.Fprintf(out, "%-12s %s\n", info.Signals[i], s)
		}
		account, err := accountOf(expected)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s %s\n", "account", account)
		if circuit == cph.Name {
			id, err := chain.PersonIDFromSignals(expected)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-12s %s\n", "personId", id.Hex())
		}
		return nil
	})...)

	return cmd
}

// accountOf renders the trailing minter/submitter signal as an address
func accountOf(signals []string) (string, error) {
	if len(signals) == 0 {
		return "", fmt.Errorf("no public signals")
	}
	last := signals[len(signals)-1]
	v, ok := new(big.Int).SetString(last, 10)
	if !ok {
		return "", fmt.Errorf("account signal %q is not a decimal integer", last)
	}
	return common.SubmitterAddress(v), nil
}
