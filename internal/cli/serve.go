package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tutu-network/countdown/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the countdown daemon",
	Long: `Run the countdown daemon: the ticking session, the completion alert and
the HTTP API. The API listens on [api] host and port from the config file
(127.0.0.1:11435 by default); --addr host:port overrides both.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := applyListenAddr(&d.Config.API, daemonAddr); err != nil {
		return err
	}
	return d.Serve(cmd.Context())
}

// applyListenAddr overrides the API listen address with addr. Either half of
// host:port may be left empty to keep the configured value.
func applyListenAddr(api *daemon.APIConfig, addr string) error {
	if addr == "" {
		return nil
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("--addr %q: %w", addr, err)
	}
	if host != "" {
		api.Host = host
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("--addr %q: invalid port", addr)
		}
		api.Port = n
	}
	return nil
}
