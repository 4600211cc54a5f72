package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-group/internal/companies"
)

func newHierarchyCommand() *cobra.Command {
	var server string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the company hierarchy",
		Long:  "Print the company hierarchy of a running server, or of the demo group when --server is not given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := newDataSource(cmd.Context(), server, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			forest, err := src.Hierarchy(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(forest)
			}
			writeHierarchy(cmd.OutOrStdout(), forest, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "base URL of a running odyssey server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of an indented tree")

	return cmd
}

func writeHierarchy(w io.Writer, nodes []*companies.HierarchyNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s  %s (%s, %s)\n", strings.Repeat("  ", depth), n.Code, n.Name, n.CompanyType, n.Currency)
		writeHierarchy(w, n.Children, depth+1)
	}
}
