package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("recongrid %s (%s, %s/%s)\n", ver, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
