package zkproof

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/deepfamily/identity-zk/server"
)

func NewServeCmd(opts *GlobalOptions) *cobra.Command {
	cfg := &server.ServeConfig{}
	var searchDirs []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity proof API server",
		Long:  `Start the HTTP API server deriving witnesses and public signals, generating proofs with the configured toolchain and verifying them locally.`,
		Example: `  # Start server on default port
  zkpi serve

  # Start with custom settings
  zkpi serve --host 0.0.0.0 --port 9090 --artifacts-dir ./build --config zkpi.toml

  # Production deployment with TLS
  zkpi serve --host 0.0.0.0 --port 443 --enable-tls \
    --cert-file /etc/ssl/cert.pem --key-file /etc/ssl/key.pem

  # Load specific circuits only
  zkpi serve --circuits person-hash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.Load()
			if err != nil {
				return err
			}
			if len(searchDirs) > 0 {
				app.Artifacts.SearchDirs = searchDirs
			}
			cfg.App = app
			cfg.LogLevel = app.Log.Level
			cfg.LogFormat = app.Log.Format
			return server.Run(cfg)
		},
	}

	// Server flags
	cmd.Flags().StringVar(&cfg.Host, "host", "localhost", "Host to bind to")
	cmd.Flags().IntVarP(&cfg.Port, "port", "p", 8080, "Port to listen on")

	// Circuit flags
	cmd.Flags().StringSliceVarP(&searchDirs, "artifacts-dir", "d", nil, "Directories searched for circuit artifacts (overrides the config file)")
	cmd.Flags().StringSliceVarP(&cfg.Circuits, "circuits", "c", []string{}, "Specific circuits to load (comma-separated, empty = all)")

	// Performance flags
	cmd.Flags().Int64Var(&cfg.MaxRequestSize, "max-request-size", 1024*1024, "Maximum request body size in bytes")
	cmd.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", 15*time.Second, "HTTP read timeout")
	cmd.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", 180*time.Second, "HTTP write timeout (proof generation can be slow)")
	cmd.Flags().DurationVar(&cfg.IdleTimeout, "idle-timeout", 120*time.Second, "HTTP idle timeout")
	cmd.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")

	// Security flags
	cmd.Flags().BoolVar(&cfg.EnableCORS, "enable-cors", true, "Enable CORS middleware")
	cmd.Flags().StringSliceVar(&cfg.CorsOrigins, "cors-origins", []string{"*"}, "Allowed CORS origins")

	// Observability flags
	cmd.Flags().BoolVar(&cfg.EnablePprof, "enable-pprof", false, "Enable pprof endpoints (debug only)")
	cmd.Flags().BoolVar(&cfg.EnableMetrics, "enable-metrics", true, "Expose Prometheus metrics on /metrics")

	// TLS flags
	cmd.Flags().BoolVar(&cfg.EnableTLS, "enable-tls", false, "Enable TLS/HTTPS")
	cmd.Flags().StringVar(&cfg.CertFile, "cert-file", "", "TLS certificate file")
	cmd.Flags().StringVar(&cfg.KeyFile, "key-file", "", "TLS private key file")

	return cmd
}
