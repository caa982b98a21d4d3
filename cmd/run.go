package cmd

import (
	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/weizlogy/desktop-grouping/internal/controller"
	"github.com/weizlogy/desktop-grouping/internal/desktop"
	"github.com/weizlogy/desktop-grouping/internal/group"
	"github.com/weizlogy/desktop-grouping/internal/host"
	"github.com/weizlogy/desktop-grouping/internal/icon"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show every persisted group on the desktop",
	Long: "Enumerate the group files in the data directory, restore one window\n" +
		"per group behind the desktop icons, and keep running until the last\n" +
		"window closes or the process is interrupted.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("new", false, "Also create one fresh group at startup")
}

func runRun(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	h, err := host.New(e.log)
	if err != nil {
		return err
	}

	embedder, err := desktop.NewEmbedder()
	if err != nil {
		e.log.Warn("desktop embedding unavailable", zap.Error(err))
		embedder = nil
	}
	resolver := icon.NewResolver(icon.NewShellSource())

	identities, err := e.gateway.List()
	if err != nil {
		return err
	}
	forceNew, _ := cmd.Flags().GetBool("new")
	if len(identities) == 0 || forceNew {
		// First run: the desktop starts with one empty group rather than
		// nothing visible at all.
		identities = append(identities, "")
	}

	for _, identity := range identities {
		if err := startGroup(e, h, embedder, resolver, identity); err != nil {
			e.log.Error("group failed to start",
				zap.String("identity", identity), zap.Error(err))
		}
	}

	err = h.Run()
	e.gateway.Sync()
	return err
}

// startGroup creates one window and drives its controller to live. The
// window's events feed straight back into the controller; a requested
// close only hides the window, it never deletes the group file.
func startGroup(e *env, h host.Host, embedder desktop.Embedder, resolver *icon.Resolver, identity string) error {
	var ctrl *controller.Controller
	w, err := h.NewWindow(host.Events{
		Dropped: func(paths []string) {
			if err := ctrl.AddItems(paths); err != nil {
				e.log.Warn("drop rejected", zap.Error(err))
			}
		},
		Moved: func(top, left, width, height float64) {
			g := group.Geometry{Top: top, Left: left, Width: width, Height: height}
			if err := ctrl.MoveResize(g); err != nil {
				e.log.Warn("move rejected", zap.Error(err))
			}
		},
		CloseRequested: func() {
			ctrl.Close()
		},
	})
	if err != nil {
		return err
	}

	ctrl = controller.New(controller.Config{
		Window:    w,
		Embedder:  embedder,
		Persister: e.gateway,
		Resolver:  resolver,
		Log:       e.log,
	})
	return ctrl.Restore(identity)
}
