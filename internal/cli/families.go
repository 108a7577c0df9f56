package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"llmlauncher/internal/registry"
)

func newFamiliesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "families",
		Aliases: []string{"family"},
		Short:   "List the model families and the properties their instances need",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadDir(a.cfg.FamiliesDir)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, d := range reg.List() {
				fmt.Fprintf(tw, "%s\t\t\n", d.Name())
				for _, p := range d.Properties {
					fmt.Fprintf(tw, "  %s\t%s\t\n", p.Name, p.Description)
				}
			}
			return tw.Flush()
		},
	}
}
