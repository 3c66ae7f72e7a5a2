package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/lbsim/internal/errors"
)

// ErrConfigNotFound is returned when a required configuration file is missing.
var ErrConfigNotFound = errors.New("config file not found")

// Result is the outcome of Load.
type Result struct {
	// Config is the effective configuration, already repaired.
	Config *Config
	// File is the file that was read, or "" when defaults were used.
	File string
	// Warnings lists every value that was replaced by its default.
	Warnings ValidationErrors
}

// Load reads path from fs, applies LBSIM_ environment overrides and repairs
// invalid values. Values that cannot be converted to the key's type and
// values that fail Validate both fall back to defaults and are reported as
// warnings; unknown keys are ignored. In key=value files, lines that are not
// key=value pairs are skipped with a warning. A structured file (yaml, json,
// toml) that does not parse is ignored as a whole, also with a warning.
//
// A missing file is an error only when required is set; otherwise defaults
// and environment overrides are used and Result.File is empty.
func Load(fs afero.Fs, path string, required bool) (*Result, error) {
	v := NewViper(fs)
	res := &Result{}

	if path != "" {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("checking config file %s: %w", path, err)
		}
		switch {
		case exists:
			data, err := afero.ReadFile(fs, path)
			if err != nil {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
			typ := configType(path)
			if typ == "env" {
				var skipped ValidationErrors
				data, skipped = filterKeyValueLines(data)
				res.Warnings = append(res.Warnings, skipped...)
			}
			v.SetConfigType(typ)
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				res.Warnings = append(res.Warnings, ValidationError{
					Field:   "config file",
					Value:   path,
					Message: fmt.Sprintf("cannot be parsed as %s (%v); file ignored", typ, err),
				})
				v = NewViper(fs)
			}
			res.File = path
		case required:
			return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
		}
	}

	cfg, warnings := decode(v)
	if errs := cfg.Validate(); len(errs) > 0 {
		warnings = append(warnings, errs...)
		cfg.Repair(errs)
	}

	res.Config = cfg
	res.Warnings = append(res.Warnings, warnings...)
	return res, nil
}

// keyValueLine matches the lines the env codec accepts: a key made of word
// characters and dots, then "=".
var keyValueLine = regexp.MustCompile(`^\s*[\w.]+\s*=`)

// filterKeyValueLines keeps blank lines, # comments and key=value lines and
// reports every other line as skipped.
func filterKeyValueLines(data []byte) ([]byte, ValidationErrors) {
	var (
		out     bytes.Buffer
		skipped ValidationErrors
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && !keyValueLine.MatchString(line) {
			skipped = append(skipped, ValidationError{
				Field:   fmt.Sprintf("line %d", n),
				Value:   trimmed,
				Message: "is not a key=value pair; line skipped",
			})
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Bytes(), skipped
}

// decimal reads integer strings in base 10, so "010" is ten rather than an
// octal eight. Anything else is returned unchanged for cast to convert.
func decimal(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}
	return s
}

// decode reads every known key through cast so that one malformed value
// cannot spoil the rest of the file.
func decode(v *viper.Viper) (*Config, ValidationErrors) {
	d := Default()
	var warnings ValidationErrors

	intKey := func(key string, def int) int {
		n, err := cast.ToIntE(decimal(v.Get(key)))
		if err != nil {
			warnings = append(warnings, conversionError(key, v.Get(key), "an integer"))
			return def
		}
		return n
	}
	floatKey := func(key string, def float64) float64 {
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil {
			warnings = append(warnings, conversionError(key, v.Get(key), "a number"))
			return def
		}
		return f
	}
	boolKey := func(key string, def bool) bool {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			warnings = append(warnings, conversionError(key, v.Get(key), "true or false"))
			return def
		}
		return b
	}
	uintKey := func(key string, def uint64) uint64 {
		n, err := cast.ToUint64E(decimal(v.Get(key)))
		if err != nil {
			warnings = append(warnings, conversionError(key, v.Get(key), "a non-negative integer"))
			return def
		}
		return n
	}

	cfg := &Config{
		InitServers:       intKey(KeyInitServers, d.InitServers),
		TotalRunTime:      intKey(KeyTotalRunTime, d.TotalRunTime),
		MinQueuePerServer: intKey(KeyMinQueuePerServer, d.MinQueuePerServer),
		MaxQueuePerServer: intKey(KeyMaxQueuePerServer, d.MaxQueuePerServer),
		ScaleCooldownTime: intKey(KeyScaleCooldownTime, d.ScaleCooldownTime),
		MinProcessTime:    intKey(KeyMinProcessTime, d.MinProcessTime),
		MaxProcessTime:    intKey(KeyMaxProcessTime, d.MaxProcessTime),
		NewRequestProb:    floatKey(KeyNewRequestProb, d.NewRequestProb),
		BlockedIPRanges:   cast.ToString(v.Get(KeyBlockedIPRanges)),
		Seed:              uintKey(KeySeed, d.Seed),
		ParallelTicks:     boolKey(KeyParallelTicks, d.ParallelTicks),
		LogFile:           cast.ToString(v.Get(KeyLogFile)),
		LogMaxSizeMB:      intKey(KeyLogMaxSizeMB, d.LogMaxSizeMB),
		LogMaxBackups:     intKey(KeyLogMaxBackups, d.LogMaxBackups),
		Console:           boolKey(KeyConsole, d.Console),
		DebugLog:          cast.ToString(v.Get(KeyDebugLog)),
		LogLevel:          cast.ToString(v.Get(KeyLogLevel)),
		MetricsFile:       cast.ToString(v.Get(KeyMetricsFile)),
		TraceFile:         cast.ToString(v.Get(KeyTraceFile)),
	}
	return cfg, warnings
}

func conversionError(key string, value any, want string) ValidationError {
	return ValidationError{
		Field:   key,
		Value:   value,
		Message: fmt.Sprintf("must be %s", want),
	}
}

// defaultFileBody is the commented template written by WriteDefaultFile.
const defaultFileBody = `# lbsim configuration
# Lines are key=value. Lines starting with # are comments.

# Initial number of workers in the pool.
initServers=%d
# Number of simulated clock cycles.
totalRunTime=%d

# The pool shrinks when the queue holds fewer than minQueuePerServer
# requests per worker and grows when it holds more than maxQueuePerServer.
minQueuePerServer=%d
maxQueuePerServer=%d
# Cycles that must pass between two pool changes.
scaleCooldownTime=%d

# Request processing time range, in cycles.
minProcessTime=%d
maxProcessTime=%d
# Probability that a new request arrives in a cycle.
newRequestProb=%g

# Comma-separated start-end ranges whose source addresses are rejected,
# e.g. 10.0.0.0-10.0.0.255,192.168.1.0-192.168.1.255
blockedIpRanges=

# Random seed (0 picks one per run).
seed=0
# Advance busy workers concurrently.
parallelTicks=false

# Text journal and rotation.
logFile=%s
logMaxSizeMB=%d
logMaxBackups=%d
console=true

# Optional outputs. Empty disables them.
debugLog=
logLevel=%s
metricsFile=
traceFile=
`

// WriteDefaultFile writes a commented default configuration to path. It
// refuses to replace an existing file unless force is set.
func WriteDefaultFile(fs afero.Fs, path string, force bool) error {
	if !force {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if exists {
			return fmt.Errorf("%s already exists: %w", path, os.ErrExist)
		}
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	d := Default()
	body := fmt.Sprintf(defaultFileBody,
		d.InitServers, d.TotalRunTime,
		d.MinQueuePerServer, d.MaxQueuePerServer, d.ScaleCooldownTime,
		d.MinProcessTime, d.MaxProcessTime, d.NewRequestProb,
		d.LogFile, d.LogMaxSizeMB, d.LogMaxBackups, d.LogLevel,
	)
	return afero.WriteFile(fs, path, []byte(body), 0o644)
}
