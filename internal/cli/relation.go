package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/famgraph/internal/kinship"
)

func init() {
	cmd := &cobra.Command{
		Use:   "relation <category> <id>",
		Short: "Find relatives of a person by kinship category",
		Long:  "Find relatives of a person by kinship category, e.g. cousins, aunts or mothersInLaw. Run 'famgraph relation categories' for the full list.",
		Args:  cobra.ExactArgs(2),
		Run:   runRelation,
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List the kinship categories",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range kinship.All() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
		},
	}

	cmd.AddCommand(categories)
	RootCmd.AddCommand(cmd)
}

func runRelation(cmd *cobra.Command, args []string) {
	c, err := kinship.Parse(args[0])
	if err != nil {
		exitErr("relation", err)
	}

	svc, done := openService()
	defer done()

	persons, err := svc.Relation(cmd.Context(), c, args[1])
	if err != nil {
		exitErr("relation", err)
	}
	printJSON(cmd, persons)
}
