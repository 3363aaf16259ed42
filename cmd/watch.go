package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/stencil/internal/registry"
	"github.com/conneroisu/stencil/internal/services"
	"github.com/conneroisu/stencil/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch <template>",
	Aliases: []string{"w"},
	Short:   "Re-render a template whenever it or its inputs change",
	Long: `Render a template once, then watch the template, values and components
files and render again after every change. The component registry persists
between renders, so changes to the components file are reported as they
happen.

Examples:
  stencil watch page.html --values values.yaml
  stencil watch page.html --values values.yaml -o page.out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchFlags *StandardFlags

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddStandardFlags(watchCmd, "input", "output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := renderOptions(args[0], watchFlags)
	componentsPath := opts.ComponentsPath
	if componentsPath == "" {
		componentsPath = appConfig.Components.File
	}

	renderer := services.NewRenderer(appConfig, appLogger)
	events := renderer.Registry().Watch()
	defer renderer.Registry().UnWatch(events)
	go logRegistryEvents(ctx, events)

	fileWatcher, err := watcher.NewFileWatcher(appConfig.Watch.Debounce, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.NoBackupFilter)
	if err := fileWatcher.AddFiles(opts.TemplatePath, opts.ValuesPath, componentsPath); err != nil {
		return err
	}
	fileWatcher.AddHandler(func(changes []watcher.ChangeEvent) error {
		for _, change := range changes {
			appLogger.Info(ctx, "File changed", "path", change.Path, "type", change.Type)
		}
		rerender(ctx, cmd, renderer, opts)
		return nil
	})

	rerender(ctx, cmd, renderer, opts)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	appLogger.Info(ctx, "Watching for changes", "template", opts.TemplatePath)

	<-ctx.Done()
	appLogger.Info(context.Background(), "Stopping file watcher")
	return nil
}

// rerender renders once and reports failures without stopping the watch.
func rerender(ctx context.Context, cmd *cobra.Command, renderer *services.Renderer, opts services.RenderOptions) {
	result, err := renderer.Render(ctx, opts)
	if err != nil {
		appLogger.Error(ctx, err, "Render failed", "template", opts.TemplatePath)
		return
	}
	if err := writeOutput(cmd, watchFlags.Output, []byte(result.HTML+"\n")); err != nil {
		appLogger.Error(ctx, err, "Failed to write output")
	}
}

func logRegistryEvents(ctx context.Context, events <-chan registry.ComponentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			appLogger.Info(ctx, "Component registry changed",
				"component", event.Component.Name,
				"event", event.Type.String(),
				"native", event.Component.Native)
		}
	}
}
