package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/fit"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
)

// fitCommand creates the fit command, which computes where an image lands
// inside a frame.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		native  string
		source  string
		target  string
		policy  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Compute the scale and position of an image inside a frame",
		Long: `Compute the scale and position of an image inside a frame.

The image size is given with --native, or read from --source (a URL or a
local file). Cover fills the frame and may overflow; contain shows the whole
image and may leave empty space. The result is centered on the frame.`,
		Example: `  framecraft fit --native 200x100 --frame 400,260,400x300
  framecraft fit --source photo.jpg --frame 0,0,600x400 --policy contain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rect, err := parseRect(target)
			if err != nil {
				return err
			}
			p, err := frame.ParseFit(policy)
			if err != nil {
				return err
			}

			var size geom.Size
			switch {
			case native != "":
				if size, err = parseSize(native); err != nil {
					return err
				}
			case source != "":
				loader, err := c.newLoader(cmd.Context(), noCache, "")
				if err != nil {
					return err
				}
				defer loader.Close()

				spinner := newSpinnerWithContext(cmd.Context(), "Reading "+filepath.Base(source)+"...")
				spinner.Start()
				info, err := loader.Info(cmd.Context(), source)
				if err != nil {
					if spinner.Cancelled() {
						spinner.Stop()
						return cmd.Context().Err()
					}
					spinner.StopWithError("Could not read " + source)
					return err
				}
				spinner.Stop()
				size = info.Size
				printKeyValue("Format", info.Format)
			default:
				return fmt.Errorf("--native or --source is required")
			}

			placement, err := fit.Place(size, rect, p)
			if err != nil {
				return err
			}
			box := placement.Box(size)
			printKeyValue("Native", formatSize(size))
			printKeyValue("Policy", p.String())
			printKeyValue("Scale", fmt.Sprintf("%.4g", placement.Scale))
			printKeyValue("Position", fmt.Sprintf("%.4g, %.4g", placement.Position.X, placement.Position.Y))
			printKeyValue("Size", fmt.Sprintf("%.4gx%.4g", box.VisualWidth(), box.VisualHeight()))
			return nil
		},
	}

	cmd.Flags().StringVar(&native, "native", "", "native image size WIDTHxHEIGHT")
	cmd.Flags().StringVar(&source, "source", "", "image URL or file to read the size from")
	cmd.Flags().StringVar(&target, "frame", "", "frame rect X,Y,WIDTHxHEIGHT (required)")
	cmd.Flags().StringVar(&policy, "policy", string(frame.DefaultFit), "fit policy: cover or contain")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("frame")
	cmd.MarkFlagsMutuallyExclusive("native", "source")

	return cmd
}
