package main

import (
	"github.com/deepfamily/identity-zk/cmd/zkproof"
	"github.com/spf13/cobra"
)

// Init the cmd
func newRootCmd() *cobra.Command {
	opts := &zkproof.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:           "zkpi",
		Short:         "Zero-knowledge identity proofs",
		Long:          `Tools and an API for deriving, proving and verifying zero-knowledge identity commitments`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.Bind(rootCmd)

	rootCmd.AddCommand(
		zkproof.NewProveCmd(opts),
		zkproof.NewSignalsCmd(),
		zkproof.NewCompareCmd(),
		zkproof.NewVerifyCmd(opts),
		zkproof.NewArtifactsCmd(opts),
		zkproof.NewPersonIDCmd(),
		zkproof.NewServeCmd(opts),
		NewVersionCmd(),
	)

	return rootCmd
}
