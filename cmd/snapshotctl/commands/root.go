// Package commands implements the snapshotctl commands.
package commands

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// ErrSnapshotFailed is returned when the API answered but the capture did not
// succeed. The status has already been printed.
var ErrSnapshotFailed = errors.New("snapshot failed")

type CLI struct {
	rootCmd *cobra.Command
	server  string
	timeout time.Duration
}

func New() *CLI {
	rootCmd := &cobra.Command{
		Use:           "snapshotctl",
		Short:         "Fetch camera snapshots from a snapshot API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{rootCmd: rootCmd}

	rootCmd.PersistentFlags().StringVarP(&c.server, "server", "s", "http://localhost:8000", "Snapshot API base URL")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(c.newGetCmd())
	rootCmd.AddCommand(c.newHistoryCmd())

	return c
}

func (c *CLI) client() *Client {
	return NewClient(c.server, c.timeout)
}

func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
