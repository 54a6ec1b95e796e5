package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/framecraft/pkg/template"
)

// migrateCommand creates the migrate command.
func (c *CLI) migrateCommand() *cobra.Command {
	var (
		output  string
		inPlace bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Rewrite a legacy template in the current layout",
		Long: `Rewrite a template in the current versioned layout.

Accepted inputs are the current layout, a bare array of frame records, and
an object with an "elements" list. Missing fits become cover, missing names
become "Frame N", and missing ids are generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			doc, shape, err := template.DecodeShape(data)
			if err != nil {
				return err
			}

			out := output
			if inPlace {
				out = in
			}
			if out == "" {
				return template.Write(doc, cmd.OutOrStdout())
			}
			if err := template.WriteFile(doc, out); err != nil {
				return err
			}
			printSuccess("Migrated %d frames from %s layout", len(doc.Frames), shape)
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")

	return cmd
}
