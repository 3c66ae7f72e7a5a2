package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/lbsim/internal/logging"
	"github.com/Iron-Ham/lbsim/internal/request"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config key (e.g., "totalRunTime")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Fields returns the distinct keys that failed, in order.
func (e ValidationErrors) Fields() []string {
	var out []string
	for _, err := range e {
		if !slices.Contains(out, err.Field) {
			out = append(out, err.Field)
		}
	}
	return out
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. Cross-field failures name the field that is reset.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateSimulation()...)
	errs = append(errs, c.validateBlocklist()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func (c *Config) validateSimulation() []ValidationError {
	var errs []ValidationError
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if c.InitServers < 1 {
		add(KeyInitServers, c.InitServers, "must be at least 1")
	}
	if c.TotalRunTime < 1 {
		add(KeyTotalRunTime, c.TotalRunTime, "must be at least 1")
	}
	if c.MinQueuePerServer < 0 {
		add(KeyMinQueuePerServer, c.MinQueuePerServer, "must not be negative")
	}
	if c.MaxQueuePerServer < 0 {
		add(KeyMaxQueuePerServer, c.MaxQueuePerServer, "must not be negative")
	} else if c.MinQueuePerServer >= 0 && c.MaxQueuePerServer < c.MinQueuePerServer {
		add(KeyMaxQueuePerServer, c.MaxQueuePerServer,
			fmt.Sprintf("must be at least %s (%d)", KeyMinQueuePerServer, c.MinQueuePerServer))
	}
	if c.ScaleCooldownTime < 0 {
		add(KeyScaleCooldownTime, c.ScaleCooldownTime, "must not be negative")
	}
	if c.MinProcessTime < 1 {
		add(KeyMinProcessTime, c.MinProcessTime, "must be at least 1")
	}
	if c.MaxProcessTime < 1 {
		add(KeyMaxProcessTime, c.MaxProcessTime, "must be at least 1")
	} else if c.MinProcessTime >= 1 && c.MaxProcessTime < c.MinProcessTime {
		add(KeyMaxProcessTime, c.MaxProcessTime,
			fmt.Sprintf("must be at least %s (%d)", KeyMinProcessTime, c.MinProcessTime))
	}
	if c.NewRequestProb < 0 || c.NewRequestProb > 1 {
		add(KeyNewRequestProb, c.NewRequestProb, "must be between 0 and 1")
	}
	return errs
}

func (c *Config) validateBlocklist() []ValidationError {
	_, rangeErrs := request.ParseRanges(c.BlockedIPRanges)
	errs := make([]ValidationError, 0, len(rangeErrs))
	for _, err := range rangeErrs {
		errs = append(errs, ValidationError{
			Field:   KeyBlockedIPRanges,
			Value:   c.BlockedIPRanges,
			Message: err.Error(),
		})
	}
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError
	if c.LogFile == "" {
		errs = append(errs, ValidationError{Field: KeyLogFile, Value: c.LogFile, Message: "must not be empty"})
	}
	if c.LogMaxSizeMB < 0 {
		errs = append(errs, ValidationError{Field: KeyLogMaxSizeMB, Value: c.LogMaxSizeMB, Message: "must not be negative"})
	}
	if c.LogMaxBackups < 0 {
		errs = append(errs, ValidationError{Field: KeyLogMaxBackups, Value: c.LogMaxBackups, Message: "must not be negative"})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.LogLevel)) {
		errs = append(errs, ValidationError{
			Field:   KeyLogLevel,
			Value:   c.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	return errs
}

// Repair replaces every field named in errs with its default. Blocked
// ranges keep their valid entries and drop the malformed ones.
func (c *Config) Repair(errs []ValidationError) {
	d := Default()
	for _, field := range ValidationErrors(errs).Fields() {
		switch field {
		case KeyInitServers:
			c.InitServers = d.InitServers
		case KeyTotalRunTime:
			c.TotalRunTime = d.TotalRunTime
		case KeyMinQueuePerServer:
			c.MinQueuePerServer = d.MinQueuePerServer
		case KeyMaxQueuePerServer:
			c.MaxQueuePerServer = d.MaxQueuePerServer
		case KeyScaleCooldownTime:
			c.ScaleCooldownTime = d.ScaleCooldownTime
		case KeyMinProcessTime:
			c.MinProcessTime = d.MinProcessTime
		case KeyMaxProcessTime:
			c.MaxProcessTime = d.MaxProcessTime
		case KeyNewRequestProb:
			c.NewRequestProb = d.NewRequestProb
		case KeyBlockedIPRanges:
			c.BlockedIPRanges = c.Blocklist().String()
		case KeyLogFile:
			c.LogFile = d.LogFile
		case KeyLogMaxSizeMB:
			c.LogMaxSizeMB = d.LogMaxSizeMB
		case KeyLogMaxBackups:
			c.LogMaxBackups = d.LogMaxBackups
		case KeyLogLevel:
			c.LogLevel = d.LogLevel
		}
	}

	// Resetting one side of a pair can leave it inverted against the other.
	if c.MaxQueuePerServer < c.MinQueuePerServer {
		c.MinQueuePerServer, c.MaxQueuePerServer = d.MinQueuePerServer, d.MaxQueuePerServer
	}
	if c.MaxProcessTime < c.MinProcessTime {
		c.MinProcessTime, c.MaxProcessTime = d.MinProcessTime, d.MaxProcessTime
	}
}

// StructuredLevel maps LogLevel onto the logging package's level names.
func (c *Config) StructuredLevel() string {
	return logging.ParseLevel(c.LogLevel)
}
