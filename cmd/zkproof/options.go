package zkproof

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/config"
	"github.com/deepfamily/identity-zk/prover"
	"github.com/deepfamily/identity-zk/server"
	"github.com/deepfamily/identity-zk/server/api"
)

// GlobalOptions are the persistent flags shared by every command
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

// Bind registers the persistent flags on the root command
func (o *GlobalOptions) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.ConfigFile, "config", "", "TOML configuration file")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "", "Log format (text, json)")
}

// Load reads the configuration file and applies the logging flags over it
func (o *GlobalOptions) Load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	return cfg, nil
}

// Logger writes to stderr, leaving stdout to command output
func (o *GlobalOptions) Logger(cfg *config.Config) server.Logger {
	server.SetupGnarkLogger(cfg.Log.Level, os.Stderr)
	return server.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

// artifactFlags override the artifact paths of the selected circuit
type artifactFlags struct {
	wasm string
	zkey string
	vkey string
}

func (f *artifactFlags) bind(cmd *cobra.Command, proving bool) {
	if proving {
		cmd.PersistentFlags().StringVar(&f.wasm, "wasm", "", "Witness generator (.wasm), overrides the search")
		cmd.PersistentFlags().StringVar(&f.zkey, "zkey", "", "Proving key (.zkey), overrides the search")
	}
	cmd.PersistentFlags().StringVar(&f.vkey, "vkey", "", "Verification key (verification_key.json), overrides the search")
}

// source merges the flag overrides for circuit into the configured ones
func (f *artifactFlags) source(cfg *config.Config, circuit string) (*api.ArtifactSource, error) {
	explicit := cfg.Circuit(circuit)
	if f.wasm != "" {
		explicit.Wasm = f.wasm
	}
	if f.zkey != "" {
		explicit.Zkey = f.zkey
	}
	if f.vkey != "" {
		explicit.Vkey = f.vkey
	}
	if cfg.Circuits == nil {
		cfg.Circuits = map[string]config.CircuitConfig{}
	}
	cfg.Circuits[circuit] = explicit
	return api.NewArtifactSource(cfg)
}

// newEngine builds a snarkjs backed engine from the configuration
func newEngine(cfg *config.Config, logger server.Logger) *prover.Engine {
	tc := prover.NewSnarkJS(cfg.Toolchain.SnarkJS...)
	tc.TempDir = cfg.Toolchain.TempDir
	return prover.NewEngine(tc, prover.WithLogger(logger))
}

func lookupCircuit(name string) (api.CircuitInfo, error) {
	info, ok := api.CircuitList[name]
	if !ok {
		return api.CircuitInfo{}, fmt.Errorf("unknown circuit %q (known: %v)", name, api.CircuitNames())
	}
	return info, nil
}
