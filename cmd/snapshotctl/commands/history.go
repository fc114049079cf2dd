package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <camera_id>",
		Short: "List recent capture attempts for a camera",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.client().History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CAPTURED AT\tOK\tLATENCY\tBYTES\tDETAIL")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%t\t%dms\t%d\t%s\n",
					r.CapturedAt.Local().Format(time.DateTime), r.OK, r.LatencyMs, r.ImageBytes, r.Detail)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records")
	return cmd
}
