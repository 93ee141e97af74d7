package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all corpus lines to stdout",
		Long:  "Write every stored corpus line to stdout, one per line, in insertion order.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	texts, err := s.ReadAllTexts(cmd.Context())
	if err != nil {
		exitErr("read corpus", err)
	}
	for _, text := range texts {
		fmt.Println(text)
	}
}
