package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	st, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}
	fmt.Printf(`{"messages":%d,"unique_words":%d,"stickers":%d,"animations":%d}`+"\n",
		st.Messages, st.UniqueWords, st.Stickers, st.Animations)
}
