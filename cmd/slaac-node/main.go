// slaac-node configures stable SLAAC addresses on a mesh interface.
//
// The on-mesh prefixes come from a TOML file. Sending SIGHUP re-reads the
// file and is handled as a topology change. Addresses removed from the
// interface by someone else are restored from the netlink removal stream.
//
// Usage:
//
//	slaac-node --config /etc/slaac-node.toml [--dry-run] [--log-level debug]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/backkem/slaac/pkg/netif"
	"github.com/backkem/slaac/pkg/slaac"
	"github.com/pion/logging"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	dryRun     bool
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "slaac-node",
		Short: "Configure stable SLAAC addresses for on-mesh prefixes",
		Long: `slaac-node keeps one stable, privacy-preserving global address per
SLAAC-enabled on-mesh prefix configured on the mesh interface.

Send SIGHUP to reload the prefix list.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "/etc/slaac-node.toml", "configuration file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "manage an in-memory address table instead of the interface")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (error, warn, info, debug, trace)")
	return cmd
}

func run(ctx context.Context, opts options) error {
	level, err := parseLogLevel(opts.logLevel)
	if err != nil {
		return err
	}
	loggerFactory := logging.NewDefaultLoggerFactory()
	loggerFactory.DefaultLogLevel = level

	config, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	removed := make(chan slaac.UnicastAddress, 16)
	var iface slaac.Interface
	if opts.dryRun {
		iface = netif.NewMemoryTable(0)
	} else {
		if err := config.Validate(); err != nil {
			return err
		}
		nl, err := netif.NewNetlink(netif.NetlinkConfig{
			InterfaceName: config.Interface,
			LoggerFactory: loggerFactory,
		})
		if err != nil {
			return err
		}
		if err := nl.SubscribeRemovals(ctx, removed); err != nil {
			return err
		}
		iface = nl
	}

	d, err := newDaemon(opts.configPath, config, iface, loggerFactory)
	if err != nil {
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	d.start()
	d.run(ctx, hup, removed)
	d.log.Info("stopped")
	return nil
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	}
	return logging.LogLevelDisabled, fmt.Errorf("unknown log level %q", s)
}
