package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the family graph as JSON",
		Long:  "Export every person with its dates and birthplace, plus all parent and partner relations, as one JSON document.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	svc, done := openService()
	defer done()

	snap, err := svc.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	printJSON(cmd, snap)
}
