package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons",
		Run:   runPersonList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")
	cmd.Flags().Bool("ids-only", false, "Only output id and name")

	personCmd.AddCommand(cmd)
}

func runPersonList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	svc, done := openService()
	defer done()

	persons, err := svc.ListPersons(cmd.Context(), limit)
	if err != nil {
		exitErr("person list", err)
	}

	if idsOnly {
		for _, p := range persons {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\n", p.ID, p.FirstName, p.LastName)
		}
		return
	}
	printJSON(cmd, persons)
}
