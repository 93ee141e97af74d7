package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/snezhkin/govorun/internal/ingest"
	"github.com/snezhkin/govorun/internal/markov"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Bulk-import corpus lines from a text file",
		Long: "Read a UTF-8 text file line by line, filter each line and store the passing ones,\n" +
			"then rebuild the model to validate the seeded corpus. Reads stdin when no file is given.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open file", err)
		}
		defer f.Close()
		r = f
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := ingest.ProcessLines(cmd.Context(), r, s, ingest.NewOrigin())
	if err != nil {
		exitErr("import", err)
	}

	// Unlike the bot's fire-and-forget trigger, seeding waits for the rebuild
	// and fails loudly if the corpus cannot produce a model.
	coord := markov.NewCoordinator(s)
	if err := coord.ForceUpdate(cmd.Context()); err != nil {
		exitErr("rebuild model", err)
	}

	fmt.Printf(`{"ok":true,"lines":%d,"added":%d,"skipped":%d}`+"\n", res.Total, res.Added, res.Skipped)
}
