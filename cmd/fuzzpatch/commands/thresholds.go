package commands

import (
	"github.com/spf13/cobra"

	"github.com/walteh/fuzzpatch/cmd/fuzzpatch/opts"
)

// NewThresholdsCmd creates the thresholds command. Test harnesses read its
// output to learn the tunables in force.
func NewThresholdsCmd(rootOpts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "thresholds",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rootOpts.Config.YAML()
			if err != nil {
				return err
			}
			_, err = rootOpts.Stdout.Write(out)
			return err
		},
	}
}
