package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haxtheweb/alfred-go/internal/logging"
)

// NewCoursesCmd constructs the `alfred courses` command, which lists the
// course collections currently present in the vector store.
func NewCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List ingested courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			store, err := buildVectorStore(log)
			if err != nil {
				return fmt.Errorf("courses: %w", err)
			}
			defer store.Close()

			names, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("courses: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("no courses ingested yet")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}
