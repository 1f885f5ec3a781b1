// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List supported biomarkers and their reference data",
	Long: `Catalog prints every supported biomarker with its canonical unit, clinical
reference range, and plausibility bounds. Use --patterns to also list the
extraction patterns, most specific first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		showPatterns, _ := cmd.Flags().GetBool("patterns")
		c := catalog.Default()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "BIOMARKER\tUNIT\tREFERENCE\tPLAUSIBLE\tPATTERNS")
		for _, b := range types.AllBiomarkers {
			def := c.Definition(b)
			fmt.Fprintf(tw, "%s\t%s\t%g-%g\t%g-%g\t%d\n",
				b, def.Unit,
				def.Reference.Min, def.Reference.Max,
				def.Plausible.Min, def.Plausible.Max,
				len(def.Patterns))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if !showPatterns {
			return nil
		}
		for _, b := range types.AllBiomarkers {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", b)
			for i, p := range c.Definition(b).Patterns {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s\n", i, p.String())
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().Bool("patterns", false, "also list extraction patterns")

	rootCmd.AddCommand(catalogCmd)
}
