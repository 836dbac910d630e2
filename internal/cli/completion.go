package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankeyflow/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sankeyflow.

To load completions:

Bash:
  $ source <(sankeyflow completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ sankeyflow completion zsh > "${fpath[1]}/_sankeyflow"

Fish:
  $ sankeyflow completion fish > ~/.config/fish/completions/sankeyflow.fish

PowerShell:
  PS> sankeyflow completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerLayoutCompletions completes the enumerated layout flags and
// restricts file arguments to JSON.
func registerLayoutCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = cmd.RegisterFlagCompletionFunc("align", fixed(pipeline.AlignNames()...))
	_ = cmd.RegisterFlagCompletionFunc("node-order", fixed(pipeline.OrderInput))
	_ = cmd.RegisterFlagCompletionFunc("link-order", fixed(pipeline.OrderInput))
	if f := cmd.Flags().Lookup("config"); f != nil {
		_ = cmd.MarkFlagFilename("config", "toml")
	}
	cmd.ValidArgsFunction = func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	}
}
