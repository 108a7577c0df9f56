package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version, os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// NewRootCmd constructs the llmlauncher command tree. Command output goes to
// out; logs go to errOut.
func NewRootCmd(version string, out, errOut io.Writer) *cobra.Command {
	a := &app{version: version, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "llmlauncher",
		Short:         "Send one prompt pair to many LLM endpoints and compare the answers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (.yaml, .json or .toml)")
	pf.StringVar(&a.flags.familiesDir, "families-dir", "", "Directory of model family descriptors (*.toml)")
	pf.StringVar(&a.flags.store, "store", "", "Instance store backend: file|redis|memory")
	pf.StringVar(&a.flags.storePath, "store-path", "", "Snapshot file for the file store")
	pf.StringVar(&a.flags.redisAddr, "redis-addr", "", "Redis address for the redis store")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults LLMLAUNCHER_LOG_LEVEL or info)")
	pf.IntVar(&a.flags.concurrency, "concurrency", 0, "Maximum concurrent requests per round (default 6)")
	pf.IntVar(&a.flags.timeout, "timeout", 0, "Per-request timeout in seconds (0 = none)")

	root.AddCommand(
		newFamiliesCmd(a),
		newInstancesCmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
		newCompletionCmd(root, out),
	)
	return root
}

func newCompletionCmd(root *cobra.Command, out io.Writer) *cobra.Command {
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(out, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(out) }})
	return completionCmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(a.out, a.cfg.Version+"\n")
			return err
		},
	}
}
