package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/editor"
	"github.com/matzehuels/framecraft/pkg/frame"
)

// frameCommand creates the frame editing command. Every subcommand edits a
// template file in place.
func (c *CLI) frameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Add, edit and remove frames in a template file",
	}

	cmd.AddCommand(c.frameAddCommand())
	cmd.AddCommand(c.frameSetCommand())
	cmd.AddCommand(c.frameRemoveCommand())
	cmd.AddCommand(c.frameListCommand())

	return cmd
}

// patchFlags collects the optional frame fields shared by add and set.
type patchFlags struct {
	name       string
	fit        string
	x, y, w, h float64
}

func (p *patchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.name, "name", "", "frame name")
	cmd.Flags().StringVar(&p.fit, "fit", "", "fit policy (cover or contain)")
	cmd.Flags().Float64Var(&p.x, "x", 0, "left edge")
	cmd.Flags().Float64Var(&p.y, "y", 0, "top edge")
	cmd.Flags().Float64Var(&p.w, "w", 0, "visual width")
	cmd.Flags().Float64Var(&p.h, "h", 0, "visual height")
}

// patch builds an editor.Patch from the flags the user actually set.
func (p *patchFlags) patch(cmd *cobra.Command) (editor.Patch, error) {
	var out editor.Patch
	flags := cmd.Flags()
	if flags.Changed("name") {
		out.Name = &p.name
	}
	if flags.Changed("fit") {
		f, err := frame.ParseFit(p.fit)
		if err != nil {
			return out, err
		}
		out.Fit = &f
	}
	if flags.Changed("x") {
		out.X = &p.x
	}
	if flags.Changed("y") {
		out.Y = &p.y
	}
	if flags.Changed("w") {
		out.W = &p.w
	}
	if flags.Changed("h") {
		out.H = &p.h
	}
	return out, nil
}

// frameAddCommand creates the "frame add" subcommand.
func (c *CLI) frameAddCommand() *cobra.Command {
	var pf patchFlags

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a frame",
		Long:  `Add a frame. Without flags the frame is 400x300, centered on the canvas and snapped to the grid.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.patch(cmd)
			if err != nil {
				return err
			}
			ctl, err := c.openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ctl.Close()

			f := ctl.CreateFrame()
			if !p.IsZero() {
				if f, err = ctl.UpdateFrame(f.ID, p); err != nil {
					return err
				}
			}
			if err := saveTemplate(ctl, args[0]); err != nil {
				return err
			}
			printSuccess("Added %s", StyleHighlight.Render(f.Name))
			printFrame(f)
			return nil
		},
	}

	pf.register(cmd)
	return cmd
}

// frameSetCommand creates the "frame set" subcommand.
func (c *CLI) frameSetCommand() *cobra.Command {
	var pf patchFlags

	cmd := &cobra.Command{
		Use:   "set <file> <frame-id>",
		Short: "Change a frame's name, fit, position or size",
		Long:  `Change a frame's name, fit, position or size. Position and size are snapped to the grid.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.patch(cmd)
			if err != nil {
				return err
			}
			if p.IsZero() {
				return fmt.Errorf("nothing to change (use --name, --fit, --x, --y, --w or --h)")
			}
			ctl, err := c.openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ctl.Close()

			f, err := ctl.UpdateFrame(args[1], p)
			if err != nil {
				return err
			}
			if err := saveTemplate(ctl, args[0]); err != nil {
				return err
			}
			printSuccess("Updated %s", StyleHighlight.Render(f.Name))
			printFrame(f)
			return nil
		},
	}

	pf.register(cmd)
	return cmd
}

// frameRemoveCommand creates the "frame rm" subcommand.
func (c *CLI) frameRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file> <frame-id>",
		Short: "Remove a frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := c.openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ctl.Close()

			if err := ctl.DeleteFrame(args[1]); err != nil {
				return err
			}
			if err := saveTemplate(ctl, args[0]); err != nil {
				return err
			}
			printSuccess("Removed frame %s", StyleHighlight.Render(args[1]))
			return nil
		},
	}
}

// frameListCommand creates the "frame ls" subcommand.
func (c *CLI) frameListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls <file>",
		Aliases: []string{"list"},
		Short:   "List the frames of a template in z-order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := c.openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ctl.Close()

			frames := ctl.ListFrames()
			printKeyValue("Canvas", formatSize(ctl.Canvas()))
			if bg, ok := ctl.Background(); ok {
				printKeyValue("Background", bg)
			}
			if len(frames) == 0 {
				printInfo("No frames")
				return nil
			}
			fmt.Fprintln(uiOut, renderFrames(frames, ""))
			return nil
		},
	}
}

// =============================================================================
// Rendering Helpers
// =============================================================================

func printFrame(f *frame.Frame) {
	r := f.Rect()
	printDetail("%s · %g,%g · %gx%g · %s", f.ID, r.X, r.Y, r.Width, r.Height, f.Fit)
}

// renderFrames renders frames as a table, highlighting the frame with id
// selected.
func renderFrames(frames []*frame.Frame, selected string) string {
	rows := make([][]string, 0, len(frames))
	for i, f := range frames {
		r := f.Rect()
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			f.Name,
			fmt.Sprintf("%g, %g", r.X, r.Y),
			fmt.Sprintf("%g x %g", r.Width, r.Height),
			f.Fit.String(),
			f.ID,
		})
	}

	headers := []string{"#", "Name", "Position", "Size", "Fit", "ID"}
	return newTable(headers, rows, func(row, col int) lipgloss.Style {
		style := styleCell
		switch {
		case col == 0 || col == 5:
			style = StyleDim
		case col == 4 && row < len(frames):
			style = fitStyle(frames[row].Fit)
		}
		if row < len(frames) && frames[row].ID == selected {
			return style.Foreground(colorGreen).Bold(true)
		}
		return style
	}).Render()
}
