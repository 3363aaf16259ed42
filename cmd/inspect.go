package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/stencil/internal/services"
	"github.com/conneroisu/stencil/internal/template"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <template>",
	Aliases: []string{"i"},
	Short:   "Show the compiled parts of a template",
	Long: `Compile a template file and print its part descriptors, the number of
values an update consumes and the number of component slots.

Examples:
  stencil inspect page.html
  stencil inspect page.html -f json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectFlags *StandardFlags

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectFlags = AddStandardFlags(inspectCmd, "format")
}

func runInspect(cmd *cobra.Command, args []string) error {
	renderer := services.NewRenderer(appConfig, appLogger)
	inspection, err := renderer.Inspect(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch inspectFlags.OutputFormat {
	case "json":
		return outputInspectionJSON(out, inspection)
	case "yaml":
		return outputInspectionYAML(out, inspection)
	default:
		return outputInspectionTable(out, inspection)
	}
}

func outputInspectionJSON(w io.Writer, inspection *services.Inspection) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(inspection)
}

func outputInspectionYAML(w io.Writer, inspection *services.Inspection) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(inspection)
}

func outputInspectionTable(w io.Writer, inspection *services.Inspection) error {
	fmt.Fprintf(w, "Template: %s\n", inspection.Template)
	fmt.Fprintf(w, "Values:   %d\n", inspection.Values)
	fmt.Fprintf(w, "Slots:    %d\n\n", inspection.Slots)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKIND\tPOSITION\tNAME\tSTRINGS")
	fmt.Fprintln(tw, "-\t----\t--------\t----\t-------")
	for i, d := range inspection.Descriptors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, d.Kind, position(d), d.Name, quoteAll(d.Strings))
	}
	return tw.Flush()
}

func position(d template.PartDescriptor) string {
	if !d.Active {
		return "inactive"
	}
	return fmt.Sprint(d.Position)
}

func quoteAll(strs []string) string {
	quoted := make([]string, len(strs))
	for i, s := range strs {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}
