package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd(&app{})
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("widgetlist command failed")
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "widgetlist",
		Short:         "Inspect and edit server-side widget lists",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVarP(&a.listID, "list", "l", "", "widget list id (overrides list_id)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "backend URL (overrides backend.url)")

	root.AddCommand(newListCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newEditCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newMoveCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newSchemasCmd())
	root.AddCommand(newConfigCmd(a))

	return root
}
