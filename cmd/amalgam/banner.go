// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"amalgam-cli/internal/amalgam"

	"github.com/spf13/cobra"
)

func newBannerCommand(app *App) *cobra.Command {
	var end bool

	bannerCmd := &cobra.Command{
		Use:   "banner <label>...",
		Short: "Print the banner amalgam writes around a file",
		Long: `Print the three banner lines amalgam writes for each label, exactly as
they appear in the output. With --end the labels are rendered as end banners.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, label := range args {
				if end {
					label = amalgam.EndLabel(label)
				}
				for _, line := range amalgam.RenderBanner(label) {
					fmt.Fprintln(app.stdout, line)
				}
			}
			return nil
		},
	}
	bannerCmd.Flags().BoolVar(&end, "end", false, "render end banners")

	return bannerCmd
}
