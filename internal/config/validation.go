package config

import (
	"fmt"
	"strings"

	"github.com/conneroisu/stencil/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder
	for _, err := range vr.Errors {
		builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
		for _, suggestion := range err.Suggestions {
			builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
		}
	}
	return builder.String()
}

func (vr *ValidationResult) add(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{
		Field:       field,
		Value:       value,
		Message:     message,
		Suggestions: suggestions,
	})
}

// Validate checks every section of config.
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{}

	validateTemplateConfig(&config.Template, result)
	validateLoggingConfig(&config.Logging, result)

	if config.Watch.Debounce < 0 {
		result.add("watch.debounce", config.Watch.Debounce, "debounce must not be negative",
			"Use a duration such as 300ms")
	}
	for _, name := range config.Components.Native {
		if strings.TrimSpace(name) == "" {
			result.add("components.native", config.Components.Native, "native component names must not be empty")
			break
		}
	}

	return result
}

func validateTemplateConfig(config *TemplateConfig, result *ValidationResult) {
	if config.Hole == "" {
		result.add("template.hole", config.Hole, "hole token is required",
			"The default hole token is ${}")
	} else if strings.ContainsAny(config.Hole, "<>") {
		result.add("template.hole", config.Hole, "hole token must not contain markup characters")
	}

	if config.Marker == "" {
		result.add("template.marker", config.Marker, "component slot marker is required",
			"The default marker is tpl-slot")
		return
	}
	if config.Marker != strings.ToLower(config.Marker) {
		result.add("template.marker", config.Marker, "marker must be lower case",
			"HTML tag names are lower cased by the parser, so "+strings.ToLower(config.Marker)+" is what a tag would contain")
	}
	if strings.ContainsAny(config.Marker, " \t\n<>/=\"'") {
		result.add("template.marker", config.Marker, "marker must be usable inside a tag name")
	}
}

func validateLoggingConfig(config *LoggingConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.add("logging.level", config.Level, err.Error(),
			"Valid levels: debug, info, warn, error")
	}
	switch config.Format {
	case "text", "json":
	default:
		result.add("logging.format", config.Format, fmt.Sprintf("unknown log format %q", config.Format),
			"Valid formats: text, json")
	}
}
