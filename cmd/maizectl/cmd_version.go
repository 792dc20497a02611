package main

import (
	"github.com/spf13/cobra"

	"maizeintel/pkg/contracts"
)

func newVersionCmd(c *cli) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// No configuration or datasets are needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := contracts.Build()
			if short {
				_, err := c.out.Write([]byte(info.String() + "\n"))
				return err
			}
			return c.printJSON(info)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print a single line instead of JSON")
	return cmd
}
