package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPath indicates a required path setting is missing
	ErrEmptyPath = errors.New("empty path")

	// ErrNoIncludePatterns indicates the locator would visit no files
	ErrNoIncludePatterns = errors.New("no include patterns")

	// ErrInvalidMaxLines indicates a non-positive extraction window
	ErrInvalidMaxLines = errors.New("invalid max lines")

	// ErrInvalidNaming indicates conflicting or malformed naming conventions
	ErrInvalidNaming = errors.New("invalid naming convention")

	// ErrInvalidThreshold indicates a negative size-delta threshold
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInvalidDiffSettings indicates an unusable whole-file diff configuration
	ErrInvalidDiffSettings = errors.New("invalid diff settings")

	// ErrInvalidCadence indicates a non-positive progress cadence
	ErrInvalidCadence = errors.New("invalid progress cadence")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if len(cfg.Search.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: search.include must list at least one glob", ErrNoIncludePatterns))
	}
	if cfg.Extract.MaxLines <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_lines must be positive, got %d", ErrInvalidMaxLines, cfg.Extract.MaxLines))
	}
	if err := validateNaming(&cfg.Naming); err != nil {
		errs = append(errs, err)
	}
	if err := validateVerify(&cfg.Verify); err != nil {
		errs = append(errs, err)
	}
	if err := validateDiff(&cfg.Diff); err != nil {
		errs = append(errs, err)
	}
	if cfg.Progress.Cadence <= 0 {
		errs = append(errs, fmt.Errorf("%w: cadence must be positive, got %d", ErrInvalidCadence, cfg.Progress.Cadence))
	}

	return joinErrors(errs)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	required := []struct {
		key   string
		value string
	}{
		{"baseline", cfg.Baseline},
		{"search_root", cfg.SearchRoot},
		{"mapping", cfg.Mapping},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%w: paths.%s is required", ErrEmptyPath, r.key))
		}
	}

	return joinErrors(errs)
}

func validateNaming(cfg *NamingConfig) error {
	var errs []error

	if !strings.HasPrefix(cfg.BaselineExt, ".") {
		errs = append(errs, fmt.Errorf("%w: baseline_ext must start with '.', got '%s'", ErrInvalidNaming, cfg.BaselineExt))
	}
	if cfg.SnapshotSuffix == "" {
		errs = append(errs, fmt.Errorf("%w: snapshot_suffix is required", ErrInvalidNaming))
	}
	if cfg.ManifestName == "" {
		errs = append(errs, fmt.Errorf("%w: manifest_name is required", ErrInvalidNaming))
	}

	return joinErrors(errs)
}

func validateVerify(cfg *VerifyConfig) error {
	var errs []error

	if cfg.BulkThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: bulk_threshold cannot be negative, got %.1f", ErrInvalidThreshold, cfg.BulkThreshold))
	}
	if cfg.CriticalThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: critical_threshold cannot be negative, got %.1f", ErrInvalidThreshold, cfg.CriticalThreshold))
	}
	if cfg.ReportLimit < 0 {
		errs = append(errs, fmt.Errorf("%w: report_limit cannot be negative, got %d", ErrInvalidThreshold, cfg.ReportLimit))
	}

	return joinErrors(errs)
}

func validateDiff(cfg *DiffConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Command) == "" {
		errs = append(errs, fmt.Errorf("%w: command is required", ErrInvalidDiffSettings))
	}
	if cfg.Separator == "" {
		errs = append(errs, fmt.Errorf("%w: separator is required", ErrInvalidDiffSettings))
	}
	if cfg.MarkerWindow < 0 {
		errs = append(errs, fmt.Errorf("%w: marker_window cannot be negative, got %d", ErrInvalidDiffSettings, cfg.MarkerWindow))
	}

	return joinErrors(errs)
}

// validationErrors keeps every underlying error reachable through errors.Is.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Nested validation failures are flattened into one list.
func joinErrors(errs []error) error {
	var flat []error
	for _, err := range errs {
		var nested validationErrors
		if errors.As(err, &nested) {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}
	errs = flat

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return validationErrors(errs)
	}
}
