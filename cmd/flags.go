package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Input flags
	Values     string `flag:"values" desc:"YAML sequence of values"`
	Components string `flag:"components,c" desc:"YAML component declarations"`

	// Output flags
	Output       string `flag:"output,o" desc:"Write output to a file instead of stdout"`
	OutputFormat string `flag:"format,f" desc:"Output format (table|json|yaml)" default:"table"`
	KeepAnchors  bool   `flag:"keep-anchors" desc:"Keep the empty comments node parts are anchored to"`
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "input":
			addInputFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		case "format":
			addFormatFlags(cmd, flags)
		}
	}

	return flags
}

func addInputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVar(&flags.Values, "values", "", "YAML sequence of values")
	cmd.Flags().StringVarP(&flags.Components, "components", "c", "",
		"YAML component declarations (overrides components.file)")
	AddFlagValidation(cmd, "values", ValidateFileExists)
	AddFlagValidation(cmd, "components", ValidateFileExists)
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.KeepAnchors, "keep-anchors", false,
		"Keep the empty comments node parts are anchored to")
}

func addFormatFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "format", "f", "table", "Output format (table|json|yaml)")
	AddFlagValidation(cmd, "format", ValidateFormat("table", "json", "yaml"))
}

// SetViperBindings binds flags to viper configuration keys
func SetViperBindings(flags *pflag.FlagSet, bindings map[string]string) error {
	for flagName, configKey := range bindings {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(configKey, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(flagName)
	}
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormat returns a validator accepting only the given formats.
func ValidateFormat(formats ...string) func(string) error {
	return func(format string) error {
		for _, f := range formats {
			if f == format {
				return nil
			}
		}
		return fmt.Errorf("invalid output format %s, must be one of: %s",
			format, strings.Join(formats, ", "))
	}
}

// ValidateFileExists rejects paths that do not exist. Empty is valid for
// optional files.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
