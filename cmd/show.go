package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weizlogy/desktop-grouping/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <identity>",
	Short: "Show one group's persisted state",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	g, found, err := e.gateway.Load(args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("group not found: %s", args[0])
	}
	return output.Print(output.Detail(g))
}
