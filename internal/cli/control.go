package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutu-network/countdown/internal/app/countdown"
	"github.com/tutu-network/countdown/internal/daemon"
	"github.com/tutu-network/countdown/internal/domain"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", "", "Daemon address host:port; serve listens on it, other commands connect to it (default from config)")
	rootCmd.AddCommand(startCmd, pauseCmd, resumeCmd, stopCmd, statusCmd)
}

var daemonAddr string

// ─── Daemon Client ──────────────────────────────────────────────────────────

type client struct {
	base string
	http *http.Client
}

func newClient() (*client, error) {
	addr := daemonAddr
	if addr == "" {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return nil, err
		}
		addr = cfg.Addr()
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &client{
		base: strings.TrimSuffix(addr, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// do sends body (if any) as JSON and decodes the reply into out.
func (c *client) do(method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return fmt.Errorf("%w at %s", domain.ErrDaemonUnreachable, c.base)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Message != "" {
			return errors.New(apiErr.Error.Message)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) snapshot(method, path string, body interface{}) (countdown.Snapshot, error) {
	var snap countdown.Snapshot
	err := c.do(method, path, body, &snap)
	return snap, err
}

// ─── Commands ───────────────────────────────────────────────────────────────

var startCmd = &cobra.Command{
	Use:   "start [DURATION]",
	Short: "Start a countdown on the running daemon",
	Long:  `Start a countdown on the running daemon. Without DURATION the daemon's current input is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlCommand(cmd, "/api/timer/start", map[string]string{"input": strings.Join(args, " ")})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running countdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlCommand(cmd, "/api/timer/pause", nil)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused countdown, or restart the last one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlCommand(cmd, "/api/timer/resume", nil)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop and reset the countdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlCommand(cmd, "/api/timer/stop", nil)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the countdown on the running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		snap, err := c.snapshot(http.MethodGet, "/api/timer", nil)
		if err != nil {
			return err
		}
		printSnapshot(cmd.OutOrStdout(), snap)
		return nil
	},
}

func controlCommand(cmd *cobra.Command, path string, body interface{}) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	snap, err := c.snapshot(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func printSnapshot(out io.Writer, snap countdown.Snapshot) {
	switch snap.Phase {
	case "stopped":
		fmt.Fprintf(out, "stopped (input %s)\n", snap.Input)
	case "finished":
		fmt.Fprintf(out, "finished %s countdown\n", durationLabel(snap.TotalSeconds))
	default:
		fmt.Fprintf(out, "%s %s left of %s\n", snap.Phase, snap.Label, durationLabel(snap.TotalSeconds))
	}
}
