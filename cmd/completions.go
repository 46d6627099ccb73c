package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/config"
)

// completeConfigKeys completes settings keys, then nothing.
func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, k := range config.Keys() {
		if strings.HasPrefix(strings.ToLower(k), strings.ToLower(toComplete)) {
			completions = append(completions, k+"\t"+config.Help(k))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeDay suggests common day expressions.
func completeDay(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	days := []string{
		"today\ttoday's screenshots",
		"yesterday\tyesterday's screenshots",
		"2 days ago\ttwo days back",
		"last monday\tthe previous Monday",
	}
	var completions []string
	for _, d := range days {
		if strings.HasPrefix(d, toComplete) {
			completions = append(completions, d)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
