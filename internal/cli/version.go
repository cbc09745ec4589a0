// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	// Version is the semantic version of the application.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildDate is the date the binary was built.
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version, commit hash, build date, and Go version.

Binaries installed with "go install" report the module version and VCS
revision recorded by the Go toolchain.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, commit, built := versionInfo()
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("apidesc %s\n", version)
		cmd.Printf("  Commit:     %s\n", commit)
		cmd.Printf("  Build Date: %s\n", built)
		cmd.Printf("  Go Version: %s\n", runtime.Version())
		cmd.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "print only the version")
}

// versionInfo returns the ldflags values, falling back to the build info
// embedded by the Go toolchain.
func versionInfo() (version, commit, built string) {
	version, commit, built = Version, Commit, BuildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && built == "unknown":
			built = s.Value
		}
	}
	return
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	version, commit, built := versionInfo()
	return fmt.Sprintf("apidesc %s (commit: %s, built: %s)", version, commit, built)
}
