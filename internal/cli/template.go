package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/editor"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/store"
	"github.com/matzehuels/framecraft/pkg/template"
)

// templateCommand creates the template management command.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Create templates and manage the template store",
	}

	cmd.AddCommand(c.templateNewCommand())
	cmd.AddCommand(c.templateListCommand())
	cmd.AddCommand(c.templatePushCommand())
	cmd.AddCommand(c.templatePullCommand())
	cmd.AddCommand(c.templateRemoveCommand())

	return cmd
}

// templateNewCommand creates the "template new" subcommand.
func (c *CLI) templateNewCommand() *cobra.Command {
	var (
		width, height float64
		background    string
		frames        int
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Write an empty template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			canvas := cfg.Canvas.Size()
			if width > 0 {
				canvas.Width = width
			}
			if height > 0 {
				canvas.Height = height
			}

			ctl, err := editor.New(editor.Options{Canvas: canvas, Grid: cfg.Canvas.Grid, Logger: c.Logger})
			if err != nil {
				return err
			}
			defer ctl.Close()

			if background != "" {
				if _, err := ctl.SetBackground(cmd.Context(), background); err != nil {
					return err
				}
			}
			for i := 0; i < frames; i++ {
				ctl.CreateFrame()
			}
			if err := saveTemplate(ctl, path); err != nil {
				return err
			}

			printSuccess("Created template")
			printKeyValue("Canvas", formatSize(ctl.Canvas()))
			printKeyValue("Frames", strconv.Itoa(frames))
			printFile(path)
			printNextStep("Add a frame", fmt.Sprintf("%s frame add %s", appName, path))
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "canvas width (default from config)")
	cmd.Flags().Float64Var(&height, "height", 0, "canvas height (default from config)")
	cmd.Flags().StringVar(&background, "background", "", "background image URL or path")
	cmd.Flags().IntVar(&frames, "frames", 0, "number of default frames to add")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// templateListCommand creates the "template ls" subcommand.
func (c *CLI) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No stored templates")
				return nil
			}
			fmt.Fprintln(uiOut, renderSummaries(list))
			return nil
		},
	}
}

// templatePushCommand creates the "template push" subcommand.
func (c *CLI) templatePushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <id> <file>",
		Short: "Store a template file under an id",
		Long:  `Store a template file under an id. Legacy template layouts are accepted and stored in the current layout. An existing template with the same id is replaced.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, path := args[0], args[1]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			doc, shape, err := template.DecodeShape(data)
			if err != nil {
				return err
			}

			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Put(cmd.Context(), id, doc); err != nil {
				return err
			}
			printSuccess("Stored %s", StyleHighlight.Render(id))
			printDetail("%d frames · %s layout", len(doc.Frames), shape)
			return nil
		},
	}
}

// templatePullCommand creates the "template pull" subcommand.
func (c *CLI) templatePullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Fetch a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return template.Write(doc, cmd.OutOrStdout())
			}
			if err := template.WriteFile(doc, output); err != nil {
				return err
			}
			printSuccess("Fetched %s", StyleHighlight.Render(args[0]))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// templateRemoveCommand creates the "template rm" subcommand.
func (c *CLI) templateRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a stored template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", StyleHighlight.Render(args[0]))
			return nil
		},
	}
}

// =============================================================================
// Rendering Helpers
// =============================================================================

func renderSummaries(list []store.Summary) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.ID, strconv.Itoa(s.Frames), s.UpdatedAt.Local().Format(time.DateTime)})
	}
	return newTable([]string{"Template", "Frames", "Updated"}, rows, func(row, col int) lipgloss.Style {
		if col == 0 {
			return StyleHighlight
		}
		return styleCell
	}).Render()
}

func formatSize(s geom.Size) string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}
