package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/famgraph/internal/family"
	"github.com/rcliao/famgraph/internal/model"
)

// relationCommands describes the add/rm/list commands of one relation kind.
type relationCommands struct {
	name   string
	short  string
	from   string
	to     string
	create func(s *family.Service, ctx context.Context, from, to string) (string, error)
	remove func(s *family.Service, ctx context.Context, from, to string) error
	read   func(s *family.Service, ctx context.Context, id string) ([]model.Person, error)
}

func init() {
	for _, rc := range []relationCommands{
		{
			name:   "parent",
			short:  "Manage parent relations",
			from:   "child-id",
			to:     "parent-id",
			create: (*family.Service).CreateParent,
			remove: (*family.Service).RemoveParent,
			read:   (*family.Service).ReadParents,
		},
		{
			name:   "partner",
			short:  "Manage partner relations",
			from:   "person-id",
			to:     "partner-id",
			create: (*family.Service).CreatePartner,
			remove: (*family.Service).RemovePartner,
			read:   (*family.Service).ReadPartners,
		},
	} {
		RootCmd.AddCommand(rc.command())
	}
}

func (rc relationCommands) command() *cobra.Command {
	group := &cobra.Command{
		Use:   rc.name,
		Short: rc.short,
	}

	group.AddCommand(&cobra.Command{
		Use:   fmt.Sprintf("add <%s> <%s>", rc.from, rc.to),
		Short: "Create a " + rc.name + " relation",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			svc, done := openService()
			defer done()

			edgeID, err := rc.create(svc, cmd.Context(), args[0], args[1])
			if err != nil {
				exitErr(rc.name+" add", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"edge":%q}`+"\n", edgeID)
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   fmt.Sprintf("rm <%s> <%s>", rc.from, rc.to),
		Short: "Remove a " + rc.name + " relation",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			svc, done := openService()
			defer done()

			if err := rc.remove(svc, cmd.Context(), args[0], args[1]); err != nil {
				exitErr(rc.name+" rm", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "list <id>",
		Short: "List the " + rc.name + "s of a person",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc, done := openService()
			defer done()

			persons, err := rc.read(svc, cmd.Context(), args[0])
			if err != nil {
				exitErr(rc.name+" list", err)
			}
			printJSON(cmd, persons)
		},
	})

	return group
}
