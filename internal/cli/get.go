package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a person",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonGet,
	}

	personCmd.AddCommand(cmd)
}

func runPersonGet(cmd *cobra.Command, args []string) {
	svc, done := openService()
	defer done()

	p, err := svc.FindPerson(cmd.Context(), args[0])
	if err != nil {
		exitErr("person get", err)
	}
	printJSON(cmd, p)
}
