package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the waitline client.
// It registers the queue, account, waittime, and token command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "waitline",
		Short: "waitline client commands",
	}
	root.AddCommand(NewQueueCommand(baseURL))
	root.AddCommand(NewAccountCommand(baseURL))
	root.AddCommand(NewWaitTimeCommand(baseURL))
	root.AddCommand(NewTokenCommand())
	return root
}
