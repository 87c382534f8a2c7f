package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tutu-network/countdown/internal/timeinput"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse TEXT",
	Short: "Show how a duration is read",
	Long:  `Show the detected format, the live-typing correction, the seconds and the canonical form of TEXT.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printParse(cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func printParse(out io.Writer, text string) error {
	seconds := timeinput.ParseDuration(text)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "format:\t%s\n", timeinput.ClassifyFormat(text))
	fmt.Fprintf(w, "filtered:\t%s\n", timeinput.Sanitize(text))
	fmt.Fprintf(w, "seconds:\t%d\n", seconds)
	fmt.Fprintf(w, "duration:\t%s\n", timeinput.FormatSeconds(seconds))
	if err := w.Flush(); err != nil {
		return err
	}
	if seconds <= 0 {
		fmt.Fprintln(out, "(would not start a countdown)")
	}
	return nil
}
