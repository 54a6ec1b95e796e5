package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand writes shell completion scripts to the command output.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts.

Bash:
  $ source <(framecraft completion bash)

  # Every session, on Linux:
  $ framecraft completion bash > /etc/bash_completion.d/framecraft

Zsh:
  $ framecraft completion zsh > "${fpath[1]}/_framecraft"

Fish:
  $ framecraft completion fish | source

  $ framecraft completion fish > ~/.config/fish/completions/framecraft.fish

PowerShell:
  PS> framecraft completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
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
