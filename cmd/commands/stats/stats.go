package stats

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"nathanbeddoewebdev/xostats/internal/config"
	"nathanbeddoewebdev/xostats/internal/retry"
	"nathanbeddoewebdev/xostats/internal/services/auth"
	"nathanbeddoewebdev/xostats/internal/services/xo"
	"nathanbeddoewebdev/xostats/internal/stats/dashboard"
	"nathanbeddoewebdev/xostats/internal/stats/services/run"
	"nathanbeddoewebdev/xostats/internal/tui/styles"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// Backend is the XO surface the stats commands use.
type Backend interface {
	run.Fetcher
	dashboard.ObjectSource
	Close() error
}

// openBackend connects to the XO server selected by the --server and
// --insecure flags. Tests replace it with an in-memory backend.
var openBackend = func(cmd *cobra.Command, cfg *config.Config) (Backend, error) {
	server, _ := cmd.Flags().GetString("server")
	insecure, _ := cmd.Flags().GetBool("insecure")

	client, err := xo.Open(cmd.Context(), cfg, auth.DefaultStore(), xo.Options{
		Server:   server,
		Insecure: insecure,
		Logger:   slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// stderrIsTerminal gates the progress spinner. Tests turn it off.
var stderrIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate host and VM statistics from Xen Orchestra",
		Long: `Aggregate hourly statistics across a selection of running hosts or VMs.

Every metric of the selected objects is averaged point by point into one
composite series: per-core CPU usage and the mean across cores, load,
memory used, and network and disk throughput per device and direction.`,
	}

	addConnectionFlags(cmd)
	cmd.AddCommand(RunCommand())
	cmd.AddCommand(ObjectsCommand())

	return cmd
}

func addConnectionFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("server", "", "XO server url (defaults to the configured server-url)")
	cmd.PersistentFlags().Bool("insecure", false, "Skip TLS certificate verification")
}

// session bundles what a stats command needs for one invocation.
type session struct {
	cfg     *config.Config
	backend Backend
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	backend, err := openBackend(cmd, cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, backend: backend}, nil
}

func (s *session) Close() { s.backend.Close() }

// newService builds the run service from the configured concurrency and
// retry settings.
func (s *session) newService(notifier run.Notifier) *run.Service {
	logger := slog.Default()
	rc := retry.DefaultConfig().WithAttempts(s.cfg.Attempts())
	rc.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Debug("retrying stats fetch", "attempt", attempt, "delay", delay, "error", err)
	}

	return run.NewService(s.backend, notifier,
		run.WithConcurrency(s.cfg.FetchConcurrency()),
		run.WithRetry(rc),
		run.WithLogger(logger),
	)
}

// stderrNotifier prints per-object failures as they happen.
func stderrNotifier(cmd *cobra.Command) run.Notifier {
	return run.NotifierFunc(func(title, detail string) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", styles.ErrorText.Render(title+":"), detail)
	})
}
