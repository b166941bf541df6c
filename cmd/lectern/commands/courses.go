package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern-go/internal/logging"
)

// NewCoursesCmd constructs the `lectern courses` command, which lists the
// indexed course titles. Only the vector index is contacted; no model
// credentials are needed.
func NewCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the indexed course titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			idx, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("courses: %w", err)
			}
			defer func() { _ = idx.Close() }()

			titles, err := idx.CourseTitles(ctx)
			if err != nil {
				return fmt.Errorf("courses: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total courses: %d\n", len(titles))
			for _, title := range titles {
				fmt.Fprintf(out, "  - %s\n", title)
			}
			return nil
		},
	}
}
