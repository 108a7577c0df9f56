package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"llmlauncher/internal/dispatch"
	"llmlauncher/internal/extract"
	"llmlauncher/internal/launcher"
)

func newRunCmd(a *app) *cobra.Command {
	var system, user string
	var asJSON, details bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send the prompt pair to every instance and print the answers",
		Long: "Send the prompt pair to every configured instance concurrently and print one pane per instance.\n" +
			"Prompts not given on the command line default to the ones used last. Use --user - to read the user prompt from stdin.",
		Example: "  llmlauncher run --system 'Be brief.' --user 'What is Go?'\n  echo 'hello' | llmlauncher run --user -",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeFn, err := a.openLauncher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			prompts := l.Prompts()
			if cmd.Flags().Changed("system") {
				prompts.System = system
			}
			if cmd.Flags().Changed("user") {
				prompts.User = user
			}
			if prompts.User == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				prompts.User = strings.TrimRight(string(b), "\n")
			}
			if len(l.Instances()) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no instances configured; add one with 'llmlauncher instances add'")
			}

			round, err := l.Run(cmd.Context(), prompts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(round.Response())
			}
			return printRound(a.out, round, details)
		},
	}
	cmd.Flags().StringVarP(&system, "system", "s", "", "System prompt")
	cmd.Flags().StringVarP(&user, "user", "u", "", "User prompt ('-' reads stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the round as JSON")
	cmd.Flags().BoolVar(&details, "details", false, "Print the full response body under each answer")
	return cmd
}

func printRound(w io.Writer, round launcher.Round, details bool) error {
	for _, r := range round.Results {
		status := "-"
		if r.StatusCode != 0 {
			status = fmt.Sprint(r.StatusCode)
		}
		fmt.Fprintf(w, "== %s [%s, %.2fs] ==\n", r.Label, status, r.ElapsedSeconds())
		fmt.Fprintln(w, r.Text)
		if details || !r.OK() {
			fmt.Fprintf(w, "-- details --\n%s\n", formatDetails(r))
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "round %s: %d result(s) in %.2fs\n", round.ID, len(round.Results), round.Elapsed.Seconds())
	return err
}

func formatDetails(r dispatch.Result) string {
	if s, ok := r.Details.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(r.Details, "", "  ")
	if err != nil {
		return extract.Text(r.Details)
	}
	return string(b)
}
