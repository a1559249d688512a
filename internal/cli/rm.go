package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a person with its dates, birthplace and relations",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonRm,
	}

	personCmd.AddCommand(cmd)
}

func runPersonRm(cmd *cobra.Command, args []string) {
	svc, done := openService()
	defer done()

	if err := svc.DeletePerson(cmd.Context(), args[0]); err != nil {
		exitErr("person rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
}
