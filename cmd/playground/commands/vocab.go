package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markuplab/playground/errors"
	"github.com/markuplab/playground/markup/vocab"
)

// VocabCmd inspects the completion vocabulary.
var VocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the completion vocabulary",
	Long: `Print the tag vocabulary the completion engine would use. With --file
the vocabulary is loaded from a TOML file instead of the built-in table.`,
	RunE: runVocab,
}

var vocabFile string

func init() {
	VocabCmd.Flags().StringVar(&vocabFile, "file", "", "Load vocabulary from a TOML file")
}

func runVocab(cmd *cobra.Command, args []string) error {
	var table *vocab.Table
	if vocabFile != "" {
		loaded, err := vocab.LoadFromFile(vocabFile)
		if err != nil {
			return errors.Wrapf(err, "failed to load vocabulary from %s", vocabFile)
		}
		table = loaded
	} else {
		table = vocab.Default()
	}

	for _, tag := range table.Tags() {
		fmt.Println(tag)
	}
	fmt.Printf("\n%d tags\n", table.Len())
	return nil
}
