package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/smallbiznis/zoolspeed/internal/catalog"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	var (
		path   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the feature catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.Load().CatalogPath
			}
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cat.Definitions())
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSCOPE\tCATEGORY\tNAME")
			for _, def := range cat.Definitions() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Key, def.Scope, def.Category, def.DisplayName)
			}
			fmt.Fprintf(w, "\n%d features\n", cat.Len())
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "catalog file, defaults to CATALOG_PATH or the built-in catalog")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
