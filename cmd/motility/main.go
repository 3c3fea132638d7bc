package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// These variables are set at build time via ldflags
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

func versionString() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("motility dev (commit: %s, built: %s)", commit, BuildTime)
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "motility",
		Short:   "Motility analysis of microscopy videos",
		Version: versionString(),
		Long: `motility detects cells on a microscopy video, tracks them over time and
reports kinematics, vigor and concentration of the population.`,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(versionString())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
