package zkproof

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/prover"
	"github.com/deepfamily/identity-zk/server/api"
)

type verifyConfig struct {
	artifacts  artifactFlags
	circuit    string
	proofFile  string
	publicFile string
}

func NewVerifyCmd(opts *GlobalOptions) *cobra.Command {
	cfg := &verifyConfig{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a proof locally against the circuit's verification key",
		Example: `  zkpi verify --circuit person-hash --proof run/proof.json --public run/public.json
  zkpi verify --circuit salted-name --vkey build/verification_key.json \
    --proof proof.json --public public.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, cfg)
		},
	}

	cfg.artifacts.bind(cmd, false)
	cmd.Flags().StringVarP(&cfg.circuit, "circuit", "c", "", "Circuit name")
	cmd.Flags().StringVar(&cfg.proofFile, "proof", "", "Proof file (prover or verifier coordinate order)")
	cmd.Flags().StringVar(&cfg.publicFile, "public", "", "Public signals file")
	_ = cmd.MarkFlagRequired("circuit")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("public")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *GlobalOptions, vc *verifyConfig) error {
	cfg, err := opts.Load()
	if err != nil {
		return err
	}
	info, err := lookupCircuit(vc.circuit)
	if err != nil {
		return err
	}
	src, err := vc.artifacts.source(cfg, vc.circuit)
	if err != nil {
		return err
	}

	proof, err := prover.ReadProofFile(vc.proofFile)
	if err != nil {
		return err
	}
	signals, err := common.ReadPublicSignals(vc.publicFile)
	if err != nil {
		return err
	}

	circuit := &api.Circuit{Info: info, Source: src}
	if err := circuit.Verify(proof, signals); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "[X] %s proof is invalid\n", vc.circuit)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[OK] %s proof is valid\n", vc.circuit)
	return nil
}
