package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/editor"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/media"
	"github.com/matzehuels/framecraft/pkg/preview"
)

// previewOptions holds the flags of the preview command.
type previewOptions struct {
	output  string
	grid    bool
	binds   []string
	watch   bool
	noCache bool
}

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a template as an SVG wireframe",
		Long: `Render a template as an SVG wireframe.

Frames are drawn as dashed outlines labelled with their name and fit policy.
With --bind, images are read to find their size, fitted into the named
frame and drawn clipped to it. With --watch the preview is rendered again
whenever the template file changes.`,
		Example: `  framecraft preview poster.json
  framecraft preview poster.json --bind f1=photos/cat.jpg --grid --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if opts.output == "" {
				opts.output = strings.TrimSuffix(in, filepath.Ext(in)) + ".svg"
			}

			loader, err := c.newLoader(cmd.Context(), opts.noCache, filepath.Dir(in))
			if err != nil {
				return err
			}
			defer loader.Close()

			if err := c.renderPreview(cmd.Context(), in, loader, opts); err != nil {
				return err
			}
			printFile(opts.output)
			if !opts.watch {
				return nil
			}

			printInfo("Watching %s (Ctrl+C to stop)", in)
			return watchFile(cmd.Context(), in, c.Logger, func() {
				if err := c.renderPreview(cmd.Context(), in, loader, opts); err != nil {
					printError("%v", err)
					return
				}
				printSuccess("Rendered %s", opts.output)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <file>.svg)")
	cmd.Flags().BoolVar(&opts.grid, "grid", false, "draw the snapping grid")
	cmd.Flags().StringArrayVar(&opts.binds, "bind", nil, "bind an image to a frame, FRAME_ID=SOURCE (repeatable)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the template changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// renderPreview loads the template at in, binds the requested images and
// writes the SVG.
func (c *CLI) renderPreview(ctx context.Context, in string, loader *media.Loader, opts previewOptions) error {
	sw := startStopwatch(c.Logger)
	ctl, err := c.openTemplate(ctx, in)
	if err != nil {
		return err
	}
	defer ctl.Close()

	if len(opts.binds) > 0 {
		spinner := newSpinnerWithContext(ctx, "Reading images...")
		spinner.Start()
		for _, b := range opts.binds {
			spinner.SetMessage("Reading " + b + "...")
			if err := bindPreviewImage(ctx, ctl, loader, b); err != nil {
				spinner.StopWithError("Could not bind " + b)
				return err
			}
		}
		spinner.StopWithSuccess(fmt.Sprintf("Bound %d images", len(opts.binds)))
	}

	images := ctl.Images()
	ptrs := make([]*frame.Image, len(images))
	for i := range images {
		ptrs[i] = &images[i]
	}

	var ro []preview.Option
	ro = append(ro, preview.WithImages(ptrs))
	if opts.grid {
		ro = append(ro, preview.WithGrid(ctl.Grid()))
	}
	svg := preview.RenderSVG(ctl.SerializeTemplate(), ro...)
	if err := os.WriteFile(opts.output, svg, 0644); err != nil {
		return err
	}
	sw.lap("rendered preview", "frames", len(ctl.ListFrames()), "images", len(images))
	return nil
}

// bindPreviewImage reads the image size up front so that the fit happens
// synchronously.
func bindPreviewImage(ctx context.Context, ctl *editor.Controller, loader *media.Loader, binding string) error {
	frameID, src, err := parseBinding(binding)
	if err != nil {
		return err
	}
	size, err := loader.Probe(ctx, src)
	if err != nil {
		return fmt.Errorf("bind %s: %w", frameID, err)
	}
	task, err := ctl.BindImage(ctx, frameID, editor.ImageSource{URL: src, Size: size})
	if err != nil {
		return err
	}
	return task.Wait(ctx)
}
