package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "serve",
		Short:  "Run a long-lived query server (not yet implemented)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("serve is not implemented: the transport/agent layer is out of scope for this engine (spec §1); use 'dealsearch search' directly")
		},
	}
}
