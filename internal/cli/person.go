package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/famgraph/internal/model"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Create, read, update and delete persons",
}

func init() {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a person",
		Long: `Create a person from flags, or from a JSON record piped via stdin.

Dates are either a plain date (1815-12-10) or a JSON date value such as
{"fromYear":1850,"toYear":1852} or {"type":"Before","year":1900}.
Places are JSON: {"country":"UK","city":"London","latitude":51.5,"longitude":-0.12}.`,
		Run: runPersonAdd,
	}
	addRecordFlags(cmd)

	personCmd.AddCommand(cmd)
	RootCmd.AddCommand(personCmd)
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("first", "", "First name")
	cmd.Flags().String("last", "", "Last name")
	cmd.Flags().StringP("gender", "g", "", "Gender: M or F")
	cmd.Flags().String("born", "", "Date of birth")
	cmd.Flags().String("died", "", "Date of death")
	cmd.Flags().String("place", "", "Place of birth (JSON)")
}

func runPersonAdd(cmd *cobra.Command, args []string) {
	var rec model.PersonRecord
	if !cmd.Flags().Changed("first") {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			if err := json.Unmarshal(b, &rec); err != nil {
				exitErr("parse json", err)
			}
		}
	}

	patch, err := patchFromFlags(cmd)
	if err != nil {
		exitErr("person add", err)
	}
	rec = patch.Apply(rec)

	svc, done := openService()
	defer done()

	p, err := svc.CreatePerson(cmd.Context(), rec)
	if err != nil {
		exitErr("person add", err)
	}
	printJSON(cmd, p)
}

// patchFromFlags collects the record flags that were set on cmd.
func patchFromFlags(cmd *cobra.Command) (model.PersonPatch, error) {
	var patch model.PersonPatch
	f := cmd.Flags()

	if f.Changed("first") {
		v, _ := f.GetString("first")
		patch.FirstName = &v
	}
	if f.Changed("last") {
		v, _ := f.GetString("last")
		patch.LastName = &v
	}
	if f.Changed("gender") {
		v, _ := f.GetString("gender")
		g := model.Gender(strings.ToUpper(v))
		patch.Gender = &g
	}
	for _, d := range []struct {
		flag string
		dst  **model.DateValue
	}{{"born", &patch.DateOfBirth}, {"died", &patch.DateOfDeath}} {
		if !f.Changed(d.flag) {
			continue
		}
		v, _ := f.GetString(d.flag)
		date, err := parseDate(v)
		if err != nil {
			return patch, fmt.Errorf("--%s: %w", d.flag, err)
		}
		*d.dst = date
	}
	if f.Changed("place") {
		v, _ := f.GetString("place")
		var place model.PlaceValue
		if err := json.Unmarshal([]byte(v), &place); err != nil {
			return patch, fmt.Errorf("--place: %w", err)
		}
		patch.PlaceOfBirth = &place
	}
	return patch, nil
}

func parseDate(s string) (*model.DateValue, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		var d model.DateValue
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, err
		}
		return &d, nil
	}
	return &model.DateValue{Date: s}, nil
}
