package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate a shell completion script",
	Long: `Generate a completion script for sqllog and print it to stdout.

Load it for the current session:

  bash:        source <(sqllog completion bash)
  zsh:         source <(sqllog completion zsh)
  fish:        sqllog completion fish | source
  powershell:  sqllog completion powershell | Out-String | Invoke-Expression

Or install it permanently:

  bash (Linux):   sqllog completion bash > /etc/bash_completion.d/sqllog
  bash (macOS):   sqllog completion bash > $(brew --prefix)/etc/bash_completion.d/sqllog
  zsh:            sqllog completion zsh > "${fpath[1]}/_sqllog"
  fish:           sqllog completion fish > ~/.config/fish/completions/sqllog.fish

zsh users may first need to enable completion with
"autoload -U compinit; compinit" in ~/.zshrc; a new shell is required
after installing.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
