package zkproof

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/chain"
	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/config"
	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/oracle"
	"github.com/deepfamily/identity-zk/prover"
	"github.com/deepfamily/identity-zk/server/api"
)

type proveConfig struct {
	artifacts    artifactFlags
	outputDir    string
	checkSignals bool
	calldata     bool
}

func NewProveCmd(opts *GlobalOptions) *cobra.Command {
	cfg := &proveConfig{}

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Generate a Groth16 proof for an identity",
		Long: `Build the circuit witness from identity flags, run the proving toolchain,
check the public signals against the independently derived ones and verify the
proof locally when a verification key is available.`,
		Example: `  # Prove a salted name
  zkpi prove name --name "Alice Smith" --minter 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266

  # Prove a person with a known mother, writing input/proof/public JSON
  zkpi prove person --name "Alice Smith" --birth-year 1990 --gender 1 \
    --mother-name "Carol Smith" --mother-birth-year 1962 \
    --submitter 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266 --out ./run

  # Prove several submissions in parallel
  zkpi prove batch --jobs jobs.json --concurrency 4`,
	}

	cfg.artifacts.bind(cmd, true)
	cmd.PersistentFlags().StringVarP(&cfg.outputDir, "out", "o", "", "Directory receiving input.json, proof.json and public.json")
	cmd.PersistentFlags().BoolVar(&cfg.checkSignals, "check-signals", true, "Fail when the proof's public signals differ from the derived ones")
	cmd.PersistentFlags().BoolVar(&cfg.calldata, "calldata", false, "Print the Solidity calldata and the ABI-encoded arguments of the proof")

	cmd.AddCommand(subjectCommands("Prove", func(c *cobra.Command, circuit string, request []byte) error {
		return runProve(c, opts, cfg, circuit, request)
	})...)
	cmd.AddCommand(newProveBatchCmd(opts, cfg))

	return cmd
}

func runProve(cmd *cobra.Command, opts *GlobalOptions, pc *proveConfig, circuit string, request []byte) error {
	out := cmd.OutOrStdout()

	cfg, err := opts.Load()
	if err != nil {
		return err
	}
	logger := opts.Logger(cfg)

	info, err := lookupCircuit(circuit)
	if err != nil {
		return err
	}
	src, err := pc.artifacts.source(cfg, circuit)
	if err != nil {
		return err
	}

	witness, expected, err := info.InputParser.Parse(request)
	if err != nil {
		return err
	}
	artifacts, err := src.ProvingArtifacts(circuit)
	if err != nil {
		return err
	}

	start := time.Now()
	fmt.Fprintf(out, "Proving %s...\n", circuit)
	bundle, err := newEngine(cfg, logger).Prove(cmd.Context(), info.Prover(), witness, artifacts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[OK] Proof created in %s\n", time.Since(start).Round(time.Millisecond))

	if dir := outputDir(pc, cfg); dir != "" {
		if err := common.SaveBundle(dir, witness, bundle); err != nil {
			return err
		}
		fmt.Fprintf(out, "[OK] Wrote %s, %s and %s to %s\n", common.WitnessFile, common.ProofFile, common.PublicFile, dir)
	}

	if pc.checkSignals {
		if err := reportSignals(out, circuit, expected, bundle.PublicSignals); err != nil {
			return err
		}
	}

	if err := preflight(out, info, src, bundle); err != nil {
		return err
	}

	return printBundle(out, circuit, bundle, pc.calldata)
}

func outputDir(pc *proveConfig, cfg *config.Config) string {
	if pc.outputDir != "" {
		return pc.outputDir
	}
	return cfg.Output.Dir
}

// reportSignals runs the oracle and prints the per-index diff on mismatch
func reportSignals(out io.Writer, circuit string, expected, actual []string) error {
	if err := oracle.Check(circuit, expected, actual); err != nil {
		fmt.Fprintf(out, "[X] Public signals differ from the derived ones\n")
		return err
	}
	fmt.Fprintf(out, "[OK] Public signals match (%d)\n", len(actual))
	return nil
}

// preflight verifies the fresh proof locally. A missing verification key
// skips the check; a failing proof is an error.
func preflight(out io.Writer, info api.CircuitInfo, src *api.ArtifactSource, bundle *models.ProofBundle) error {
	circuit := &api.Circuit{Info: info, Source: src}
	err := circuit.Verify(bundle.Proof, bundle.PublicSignals)
	switch {
	case err == nil:
		fmt.Fprintf(out, "[OK] Proof verifies locally\n")
		return nil
	case errors.Is(err, models.ErrArtifactNotFound):
		fmt.Fprintf(out, "[-] Local verification skipped: no verification key\n")
		return nil
	default:
		fmt.Fprintf(out, "[X] Local verification failed\n")
		return err
	}
}

func printBundle(out io.Writer, circuit string, bundle *models.ProofBundle, calldata bool) error {
	if circuit == cph.Name {
		id, err := chain.PersonIDFromSignals(bundle.PublicSignals)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Person ID: %s\n", id.Hex())
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))

	if calldata {
		s, err := chain.SolidityCalldata(bundle.Proof, bundle.PublicSignals)
		if err != nil {
			return err
		}
		encoded, err := chain.ProofArgumentsHex(bundle.Proof, bundle.PublicSignals)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
		fmt.Fprintf(out, "ABI: %s\n", encoded)
	}
	return nil
}

// batchJob is one entry of a --jobs file
type batchJob struct {
	ID      string          `json:"id"`
	Circuit string          `json:"circuit"`
	Request json.RawMessage `json:"request"`
	Out     string          `json:"out,omitempty"`
}

func newProveBatchCmd(opts *GlobalOptions, pc *proveConfig) *cobra.Command {
	var (
		jobsFile    string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Prove many independent identity requests concurrently",
		Long: `Read a JSON array of {"id", "circuit", "request", "out"} jobs and prove them
concurrently. Jobs without "out" write to <out>/<id> when --out is set. The
first failing job cancels the rest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProveBatch(cmd, opts, pc, jobsFile, concurrency)
		},
	}

	cmd.Flags().StringVar(&jobsFile, "jobs", "", "JSON file listing the jobs")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Maximum concurrent proofs (0 = configured value)")
	_ = cmd.MarkFlagRequired("jobs")

	return cmd
}

func runProveBatch(cmd *cobra.Command, opts *GlobalOptions, pc *proveConfig, jobsFile string, concurrency int) error {
	out := cmd.OutOrStdout()

	cfg, err := opts.Load()
	if err != nil {
		return err
	}
	logger := opts.Logger(cfg)
	if concurrency <= 0 {
		concurrency = cfg.Toolchain.Concurrency
	}

	data, err := os.ReadFile(jobsFile)
	if err != nil {
		return fmt.Errorf("failed to read jobs file: %w", err)
	}
	var entries []batchJob
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse jobs file: %w", err)
	}

	jobs := make([]prover.Job, len(entries))
	expected := make([][]string, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = fmt.Sprintf("%d", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("job %s: duplicate id", e.ID)
		}
		seen[e.ID] = true

		info, err := lookupCircuit(e.Circuit)
		if err != nil {
			return fmt.Errorf("job %s: %w", e.ID, err)
		}
		src, err := pc.artifacts.source(cfg, e.Circuit)
		if err != nil {
			return err
		}
		witness, exp, err := info.InputParser.Parse(e.Request)
		if err != nil {
			return fmt.Errorf("job %s: %w", e.ID, err)
		}
		artifacts, err := src.ProvingArtifacts(e.Circuit)
		if err != nil {
			return fmt.Errorf("job %s: %w", e.ID, err)
		}

		dir := e.Out
		if dir == "" {
			if base := outputDir(pc, cfg); base != "" {
				dir = filepath.Join(base, e.ID)
			}
		}
		jobs[i] = prover.Job{
			ID:        e.ID,
			Circuit:   info.Prover(),
			Witness:   witness,
			Artifacts: artifacts,
			OutDir:    dir,
		}
		expected[i] = exp
	}

	start := time.Now()
	fmt.Fprintf(out, "\n==== Proving %d jobs (concurrency %d) ====\n", len(jobs), concurrency)
	bundles, err := newEngine(cfg, logger).ProveBatch(cmd.Context(), jobs, concurrency)
	if err != nil {
		return err
	}

	failed := 0
	for i, b := range bundles {
		if pc.checkSignals {
			if err := oracle.Check(jobs[i].Circuit.Name, expected[i], b.PublicSignals); err != nil {
				failed++
				fmt.Fprintf(out, "[X] %s: %v\n", jobs[i].ID, err)
				continue
			}
		}
		fmt.Fprintf(out, "[OK] %s (%s)\n", jobs[i].ID, jobs[i].Circuit.Name)
	}

	fmt.Fprintf(out, "\n==== Batch complete in %s ====\n", time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs produced unexpected public signals", failed, len(jobs))
	}
	return nil
}
