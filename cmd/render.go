package cmd

import (
	"github.com/conneroisu/stencil/internal/services"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:     "render <template>",
	Aliases: []string{"r"},
	Short:   "Render a template with values and components",
	Long: `Compile a template file, instantiate it, commit the values and print the
resulting HTML.

Examples:
  stencil render page.html
  stencil render page.html --values values.yaml --components components.yaml
  stencil render page.html --values values.yaml -o page.out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var renderFlags *StandardFlags

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags = AddStandardFlags(renderCmd, "input", "output")
}

func runRender(cmd *cobra.Command, args []string) error {
	renderer := services.NewRenderer(appConfig, appLogger)
	result, err := renderer.Render(cmd.Context(), renderOptions(args[0], renderFlags))
	if err != nil {
		return err
	}
	return writeOutput(cmd, renderFlags.Output, []byte(result.HTML+"\n"))
}

func renderOptions(templatePath string, flags *StandardFlags) services.RenderOptions {
	return services.RenderOptions{
		TemplatePath:   templatePath,
		ValuesPath:     flags.Values,
		ComponentsPath: flags.Components,
		KeepAnchors:    flags.KeepAnchors,
	}
}
