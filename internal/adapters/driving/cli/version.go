package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build details",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) {
	if short, _ := cmd.Flags().GetBool("short"); short {
		cmd.Println(version)
		return
	}

	cmd.Printf("docqa version %s\n", version)
	if rev, dirty := vcsRevision(); rev != "" {
		if dirty {
			rev += " (modified)"
		}
		cmd.Printf("  commit: %s\n", rev)
	}
	cmd.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsRevision reports the commit the binary was built from, when the Go
// toolchain stamped one.
func vcsRevision() (rev string, dirty bool) {
	info, ok := readBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return rev, dirty
}
