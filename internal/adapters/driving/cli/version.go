package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

type versionView struct {
	Version string `json:"version" yaml:"version"`
	Go      string `json:"go" yaml:"go"`
	OS      string `json:"os" yaml:"os"`
	Arch    string `json:"arch" yaml:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := versionView{Version: version, Go: runtime.Version(), OS: runtime.GOOS, Arch: runtime.GOARCH}
		return render(cmd, v, func() {
			fmt.Fprintf(cmd.OutOrStdout(), "docpilot version %s (%s %s/%s)\n", v.Version, v.Go, v.OS, v.Arch)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
