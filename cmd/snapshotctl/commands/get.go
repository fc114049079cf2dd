package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (c *CLI) newGetCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <camera_id>",
		Short: "Capture a snapshot and print its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.client().Snapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(snap.Status); err != nil {
				return err
			}

			if !snap.Status.OK {
				return ErrSnapshotFailed
			}
			if out != "" {
				if err := os.WriteFile(out, snap.Image, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the JPEG to this file")
	return cmd
}
