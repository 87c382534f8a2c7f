package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tutu-network/countdown/internal/daemon"
	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/infra/sqlite"
	"github.com/tutu-network/countdown/internal/timeinput"
)

func init() {
	alertsCmd.Flags().IntVarP(&alertsLimit, "limit", "n", 20, "Number of alerts to show")
	rootCmd.AddCommand(alertsCmd)
}

var alertsLimit int

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show recent completion alerts",
	Args:  cobra.NoArgs,
	RunE:  runAlerts,
}

func runAlerts(cmd *cobra.Command, args []string) error {
	db, err := sqlite.Open(daemon.Home())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	alerts, err := db.ListAlerts(alertsLimit)
	if err != nil {
		return err
	}
	return printAlerts(cmd.OutOrStdout(), alerts)
}

func printAlerts(out io.Writer, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts yet. Run 'countdown run 5m' to get one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tDURATION\tDELIVERED\tSOUND")
	for _, a := range alerts {
		delivered := "yes"
		if !a.Delivered {
			delivered = "no: " + a.Error
		}
		sound := a.SoundFile
		if sound == "" {
			sound = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			humanize.Time(a.FinishedAt),
			durationLabel(a.TotalSeconds),
			delivered,
			sound,
		)
	}
	return w.Flush()
}

// durationLabel renders a whole countdown length.
func durationLabel(seconds int) string {
	return timeinput.FormatSeconds(seconds)
}
