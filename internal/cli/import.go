package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/famgraph/internal/family"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a family graph from JSON",
		Long:  "Import a family graph from JSON (stdin or --file). Expects the format produced by export. Persons get new ids; the mapping is printed.",
		Run:   runImport,
	}

	cmd.Flags().String("file", "", "Read from this file instead of stdin")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var in io.Reader = os.Stdin
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			exitErr("open file", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		exitErr("read input", err)
	}

	var snap family.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		exitErr("parse json", err)
	}

	svc, done := openService()
	defer done()

	res, err := svc.Import(cmd.Context(), &snap)
	if err != nil {
		exitErr("import", err)
	}
	printJSON(cmd, res)
}
