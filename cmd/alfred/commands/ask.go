package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haxtheweb/alfred-go/internal/logging"
	"github.com/haxtheweb/alfred-go/internal/retrieval"
)

// NewAskCmd constructs the `alfred ask` command, which answers a single
// question about an ingested course from the terminal.
func NewAskCmd() *cobra.Command {
	var course string
	var engineName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about an ingested course",
		Long: `Ask a question about an ingested course site. Context is retrieved from
the course's vector collection and the answer is produced by the selected
engine (Alfred, Robin, Catwoman, or Penguin).

Examples:
  alfred ask --course astro101 "what is a nebula?"
  alfred ask --course chem110 --engine Robin "explain covalent bonds"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			question := args[0]

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			store, err := buildVectorStore(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer store.Close()

			retriever, err := retrieval.NewPipeline(emb, store, nil)
			if err != nil {
				return fmt.Errorf("ask: failed to create retrieval pipeline: %w", err)
			}

			router, err := buildRouter(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			contextText, err := retriever.Context(ctx, course, question)
			if err != nil {
				return fmt.Errorf("ask: retrieval failed for course %q: %w", course, err)
			}

			envelope, err := router.Answer(ctx, question, contextText, engineName)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(envelope) //nolint:wrapcheck // CLI output error goes directly to cobra
			}

			fmt.Println(envelope.Answers.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&course, "course", "c", "", "Course collection to query (required)")
	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "Answer engine (Alfred, Robin, Catwoman, Penguin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full answer envelope as JSON")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}
