package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a shell completion script",
	Long: `Print a completion script for bash, zsh, fish or powershell.

Besides subcommands and flags, the script completes settings keys for
'worklog config get/set' (with a short description of each key) and common
day expressions such as 'yesterday' for 'worklog report' and 'worklog history'.

Try it in the current shell:
  source <(worklog completion bash)
  worklog completion fish | source

Install it permanently:
  worklog completion bash > ~/.local/share/bash-completion/completions/worklog
  worklog completion zsh  > "${fpath[1]}/_worklog"     # needs compinit in ~/.zshrc
  worklog completion fish > ~/.config/fish/completions/worklog.fish
  worklog completion powershell >> $PROFILE

Open a new shell afterwards.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		default:
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
