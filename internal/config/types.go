// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"amalgam-cli/internal/amalgam"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMaxDepth is returned when MaxDepth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth")
	// ErrInvalidDebounce is returned when the watch debounce is negative.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	defaultWatchPatterns = []string{
		"**/*.h",
		"**/*.hh",
		"**/*.hpp",
		"**/*.hxx",
		"**/*.inl",
		"**/*.ipp",
	}
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Input is the root file to amalgamate.
		Input string `json:"input" mapstructure:"input"`
		// Output is the flattened output file.
		Output string `json:"output" mapstructure:"output"`
		// MissingInclude is the policy for include targets that cannot be opened.
		MissingInclude amalgam.MissingPolicy `json:"missing_include" mapstructure:"missing_include"`
		// DetectCycles fails the run when a file re-includes itself while being expanded.
		DetectCycles bool `json:"detect_cycles" mapstructure:"detect_cycles"`
		// MaxDepth limits include nesting (0 = unlimited).
		MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
		// SearchPaths are fallback directories for include targets.
		SearchPaths []string `json:"search_paths" mapstructure:"search_paths"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures `amalgam watch`
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme sets the style used to render issue guidance
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce is the quiet period before a re-run.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// Patterns select the files whose changes trigger a re-run.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// Ignore lists additional patterns that never trigger a re-run.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}
)

// DefaultConfig returns the default configuration, which reproduces the
// plain Masterfile.hpp -> ArgonMaster.hpp amalgamation.
func DefaultConfig() *Config {
	return &Config{
		Input:          amalgam.DefaultInput,
		Output:         amalgam.DefaultOutput,
		MissingInclude: amalgam.MissingEmpty,
		DetectCycles:   false,
		MaxDepth:       0,
		SearchPaths:    []string{},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
			Patterns: append([]string(nil), defaultWatchPatterns...),
			Ignore:   []string{},
		},
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.MissingInclude.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMaxDepth, c.MaxDepth))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the sentinel and the individual field problems.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// ResolverOptions converts the amalgamation settings into resolver options.
func (c Config) ResolverOptions() amalgam.ResolverOptions {
	return amalgam.ResolverOptions{
		MissingInclude: c.MissingInclude,
		DetectCycles:   c.DetectCycles,
		MaxDepth:       c.MaxDepth,
		SearchPaths:    append([]string(nil), c.SearchPaths...),
	}
}
