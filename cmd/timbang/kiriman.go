package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newKirimanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "kiriman",
		Short: "List shipment names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.api.ListShipmentNames(cmd.Context())
			if err != nil {
				return err
			}
			c.warnOffline(cmd)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNama Kiriman")
			for _, n := range names {
				fmt.Fprintf(tw, "%d\t%s\n", n.ID, n.Name)
			}
			return tw.Flush()
		},
	}
}
