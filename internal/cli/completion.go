package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the command that emits shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate a completion script for the named shell and print it to stdout.

Load it for the current session:

  $ source <(promopress completion bash)
  $ promopress completion fish | source

Or install it permanently:

  $ promopress completion bash > /etc/bash_completion.d/promopress
  $ promopress completion zsh > "${fpath[1]}/_promopress"
  $ promopress completion fish > ~/.config/fish/completions/promopress.fish
  PS> promopress completion powershell >> $PROFILE

Zsh needs compinit enabled once ("autoload -U compinit; compinit" in
~/.zshrc) before completions take effect.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
