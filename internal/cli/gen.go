package cli

import (
	"fmt"

	"github.com/snezhkin/govorun/internal/markov"
	"github.com/spf13/cobra"
)

var (
	genStory     bool
	genSentences int
	genMinWords  int
	genMaxWords  int
)

func init() {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate text offline from the stored corpus",
		Long:  "Build the model from the stored corpus and print one generated sentence or story.",
		Run:   runGen,
	}
	cmd.Flags().BoolVar(&genStory, "story", false, "Generate a multi-sentence story instead of one sentence")
	cmd.Flags().IntVar(&genSentences, "sentences", 3, "Sentence count for --story")
	cmd.Flags().IntVar(&genMinWords, "min-words", markov.DefaultMinWords, "Minimum words per sentence")
	cmd.Flags().IntVar(&genMaxWords, "max-words", markov.DefaultMaxWords, "Maximum words per sentence")

	RootCmd.AddCommand(cmd)
}

func runGen(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	coord := markov.NewCoordinator(s)
	if err := coord.ForceUpdate(cmd.Context()); err != nil {
		exitErr("build model", err)
	}
	gen := markov.NewGenerator(coord, markov.DefaultForbiddenEndings())

	if genStory {
		fmt.Println(gen.Story(genSentences, genSentences, genMinWords, genMaxWords))
		return
	}
	fmt.Println(gen.Sentence(genMinWords, genMaxWords))
}
