package cmd

import (
	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/weizlogy/desktop-grouping/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted groups",
	Long:  "List every group file in the data directory with its identity and item count.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("files", false, "Include the backing file path per group")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	files, _ := cmd.Flags().GetBool("files")

	identities, err := e.gateway.List()
	if err != nil {
		return err
	}

	summaries := make([]output.GroupSummary, 0, len(identities))
	for _, id := range identities {
		s := output.GroupSummary{Identity: id}
		if files {
			s.File = e.gateway.Path(id)
		}
		g, found, err := e.gateway.Load(id)
		if err != nil {
			e.log.Warn("unreadable group file", zap.String("identity", id), zap.Error(err))
		} else if found {
			s.Items = len(g.Items)
		}
		summaries = append(summaries, s)
	}
	return output.Print(summaries)
}
