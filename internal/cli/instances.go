package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"llmlauncher/internal/instances"
)

func newInstancesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instances",
		Aliases: []string{"instance", "inst"},
		Short:   "Manage configured model instances",
	}
	cmd.AddCommand(newInstancesListCmd(a), newInstancesAddCmd(a), newInstancesEditCmd(a), newInstancesRmCmd(a))
	return cmd
}

func newInstancesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List instances in round order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeFn, err := a.openLauncher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFAMILY\tPROPERTIES\t")
			for _, inst := range l.Instances() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", inst.Name, inst.Family, formatProps(inst.Properties))
			}
			return tw.Flush()
		},
	}
}

func newInstancesAddCmd(a *app) *cobra.Command {
	var family string
	var props []string
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add an instance of a model family",
		Example: "  llmlauncher instances add gpt --family OpenAI --prop api_key=sk-... --prop model=gpt-4o",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseProps(props)
			if err != nil {
				return err
			}
			l, closeFn, err := a.openLauncher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := l.AddInstance(instances.Instance{Name: args[0], Family: family, Properties: values}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %s (%s)\n", args[0], family)
			return nil
		},
	}
	cmd.Flags().StringVar(&family, "family", "", "Model family name (see 'llmlauncher families')")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "Property value as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("family")
	return cmd
}

func newInstancesEditCmd(a *app) *cobra.Command {
	var props []string
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change property values of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseProps(props)
			if err != nil {
				return err
			}
			l, closeFn, err := a.openLauncher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			cur, err := l.Instance(args[0])
			if err != nil {
				return err
			}
			maps.Copy(cur.Properties, values)
			if err := l.UpdateInstance(args[0], cur); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "updated %s\n", cur.Label())
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "Property value as key=value (repeatable)")
	return cmd
}

func newInstancesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove instances",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeFn, err := a.openLauncher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			for _, name := range args {
				l.RemoveInstance(name)
				fmt.Fprintf(a.out, "removed %s\n", name)
			}
			return nil
		},
	}
}

// formatProps renders properties sorted by key, masking values of keys that
// look like credentials.
func formatProps(props map[string]string) string {
	keys := slices.Sorted(maps.Keys(props))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+maskSecret(k, props[k]))
	}
	return strings.Join(parts, " ")
}

func maskSecret(key, value string) string {
	k := strings.ToLower(key)
	if value == "" || !(strings.Contains(k, "key") || strings.Contains(k, "token") || strings.Contains(k, "secret")) {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}
