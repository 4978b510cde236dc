package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitdump/splitdump/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("splitdump version %s\n", version.Version)
			fmt.Printf("Git commit: %s\n", version.GitCommit)
			fmt.Printf("Git branch: %s\n", version.GitBranch)
			fmt.Printf("Build time: %s\n", version.BuildTime)
			if execPath, err := os.Executable(); err == nil {
				fmt.Printf("Executable location: %s\n", execPath)
			}
		},
	}
}
