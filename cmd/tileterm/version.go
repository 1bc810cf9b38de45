package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/gogpu/tileterm"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and backend information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			v := version
			if info, ok := debug.ReadBuildInfo(); ok && v == "dev" && info.Main.Version != "" {
				v = info.Main.Version
			}
			fmt.Fprintf(out, "tileterm\n")
			fmt.Fprintf(out, "  Version:    %s\n", v)
			fmt.Fprintf(out, "  Library:    %s\n", tileterm.Version)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  Backends:   %v\n", tileterm.AvailableBackends())
		},
	}
}
