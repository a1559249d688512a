package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search persons by name",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPersonSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")

	personCmd.AddCommand(cmd)
}

func runPersonSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	svc, done := openService()
	defer done()

	persons, err := svc.SearchPersons(cmd.Context(), query, limit)
	if err != nil {
		exitErr("person search", err)
	}
	printJSON(cmd, persons)
}
