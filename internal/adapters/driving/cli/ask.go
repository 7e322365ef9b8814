package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askJSON      bool
	askNoSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested PDF",
	Long: `Retrieve the chunks of the ingested PDF closest to the question and ask
the language model to answer from them alone. The chunks are printed below
the answer so it can be checked against the document.

When the document does not contain the answer, docqa says so instead of
guessing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and sources as JSON")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "print the answer only")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		cmd.PrintErrln(describeError(domain.ErrEmptyQuestion))
		return domain.ErrEmptyQuestion
	}

	if err := ensureServices(cmd); err != nil {
		return err
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	result, err := answerService.Answer(cmd.Context(), question)
	if err != nil {
		cmd.PrintErrln(describeError(err))
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, result)
	}
	outputAnswerText(cmd, result)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, result *domain.AnswerResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, result *domain.AnswerResult) {
	cmd.Println(headingLabel("Answer"))
	cmd.Println(result.Answer)

	if askNoSources || result.IsNotFound() {
		return
	}

	cmd.Println()
	cmd.Println(headingLabel(fmt.Sprintf("Sources (%d)", len(result.Sources))))
	for _, src := range result.Sources {
		cmd.Printf("\n[%d]\n", src.Chunk)
		cmd.Println(indent(src.Content, "  "))
		for _, key := range src.SortedMetadataKeys() {
			cmd.Println(mutedLabel(fmt.Sprintf("  %s: %s", key, src.Metadata[key])))
		}
	}
}
