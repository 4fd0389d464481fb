// Package cli 实现 carbonchat 命令行工具。命令行直接调用解释器与计算器，不依赖任何外部服务。
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the carbonchat root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "carbonchat",
		Short:         "Estimate carbon footprints from plain-language messages",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		NewAskCmd(),
		NewReplCmd(),
		NewEstimateCmd(),
	)
	return cmd
}
