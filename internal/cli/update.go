package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a person",
		Long:  "Change the given fields of a person. Fields not passed are kept; --clear removes dateOfBirth, dateOfDeath or placeOfBirth.",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonUpdate,
	}
	addRecordFlags(cmd)
	cmd.Flags().StringSlice("clear", nil, "Optional fields to remove")

	personCmd.AddCommand(cmd)
}

func runPersonUpdate(cmd *cobra.Command, args []string) {
	patch, err := patchFromFlags(cmd)
	if err != nil {
		exitErr("person update", err)
	}
	patch.Clear, _ = cmd.Flags().GetStringSlice("clear")

	svc, done := openService()
	defer done()

	p, changed, err := svc.UpdatePerson(cmd.Context(), args[0], patch)
	if err != nil {
		exitErr("person update", err)
	}
	printJSON(cmd, map[string]any{"changed": changed, "person": p})
}
