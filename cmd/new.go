package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/output"
)

var newCmd = &cobra.Command{
	Use:   "new [path...]",
	Short: "Create a group, optionally seeded with items",
	Long: "Create a new group file. Appearance comes from the settings file's\n" +
		"[defaults] table unless overridden by flags; any path arguments become\n" +
		"the group's initial items.",
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().String("background", "", "Background color (#AARRGGBB or #RRGGBB)")
	newCmd.Flags().String("border", "", "Border color (#AARRGGBB or #RRGGBB)")
	newCmd.Flags().Float64("opacity", -1, "Resting opacity 0.0-1.0")
}

func runNew(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	g := group.New(group.NewIdentity())
	applyDefaults(g, e.cfg.Defaults, e.log)

	if s, _ := cmd.Flags().GetString("background"); s != "" {
		c, err := group.ParseColor(s)
		if err != nil {
			return fmt.Errorf("--background: %w", err)
		}
		g.SetBackground(c)
	}
	if s, _ := cmd.Flags().GetString("border"); s != "" {
		c, err := group.ParseColor(s)
		if err != nil {
			return fmt.Errorf("--border: %w", err)
		}
		g.SetBorder(c)
	}
	if o, _ := cmd.Flags().GetFloat64("opacity"); o >= 0 {
		g.SetOpacity(o)
	}
	for _, p := range args {
		g.AddItem(group.NewItem(p))
	}

	e.gateway.Save(g)
	e.gateway.Sync()
	return output.Print(output.Detail(g))
}
