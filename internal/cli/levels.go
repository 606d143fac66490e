package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"skillquiz-service/internal/level"

	"github.com/spf13/cobra"
)

// NewLevelsCmd prints the level ladder.
func NewLevelsCmd() *cobra.Command {
	var upTo, unlocked int
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Print required questions and credit rewards per level",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tQUESTIONS\tCREDITS\tUNLOCKED")
			for _, t := range level.Catalog(1, upTo, unlocked) {
				fmt.Fprintf(w, "%d\t%d\t%d\t%v\n", t.Level, t.RequiredQuestions, t.Credits, t.Unlocked)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&upTo, "up-to", level.MaxVisible, "highest level to list")
	cmd.Flags().IntVar(&unlocked, "unlocked", 1, "highest unlocked level")
	return cmd
}
