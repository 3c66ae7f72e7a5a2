// Package config loads simulation settings from a flat key=value file,
// environment variables and command-line overrides.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

// EnvPrefix prefixes environment overrides, e.g. LBSIM_TOTALRUNTIME.
const EnvPrefix = "LBSIM"

// DefaultFile is the configuration file read when none is named.
const DefaultFile = "config.txt"

// Config keys. The simulation keys keep the names of the original
// key=value format so existing files load unchanged.
const (
	KeyInitServers       = "initServers"
	KeyTotalRunTime      = "totalRunTime"
	KeyMinQueuePerServer = "minQueuePerServer"
	KeyMaxQueuePerServer = "maxQueuePerServer"
	KeyScaleCooldownTime = "scaleCooldownTime"
	KeyMinProcessTime    = "minProcessTime"
	KeyMaxProcessTime    = "maxProcessTime"
	KeyNewRequestProb    = "newRequestProb"
	KeyBlockedIPRanges   = "blockedIpRanges"
	KeySeed              = "seed"
	KeyParallelTicks     = "parallelTicks"
	KeyLogFile           = "logFile"
	KeyLogMaxSizeMB      = "logMaxSizeMB"
	KeyLogMaxBackups     = "logMaxBackups"
	KeyConsole           = "console"
	KeyDebugLog          = "debugLog"
	KeyLogLevel          = "logLevel"
	KeyMetricsFile       = "metricsFile"
	KeyTraceFile         = "traceFile"
)

// Config represents the complete lbsim configuration.
type Config struct {
	// InitServers is the initial worker count.
	InitServers int `mapstructure:"initServers" yaml:"initServers"`
	// TotalRunTime is the number of cycles to simulate.
	TotalRunTime int `mapstructure:"totalRunTime" yaml:"totalRunTime"`
	// MinQueuePerServer is the per-worker queue depth below which the pool shrinks.
	MinQueuePerServer int `mapstructure:"minQueuePerServer" yaml:"minQueuePerServer"`
	// MaxQueuePerServer is the per-worker queue depth above which the pool grows.
	MaxQueuePerServer int `mapstructure:"maxQueuePerServer" yaml:"maxQueuePerServer"`
	// ScaleCooldownTime is the minimum number of cycles between pool changes.
	ScaleCooldownTime int `mapstructure:"scaleCooldownTime" yaml:"scaleCooldownTime"`
	// MinProcessTime and MaxProcessTime bound request durations in cycles.
	MinProcessTime int `mapstructure:"minProcessTime" yaml:"minProcessTime"`
	MaxProcessTime int `mapstructure:"maxProcessTime" yaml:"maxProcessTime"`
	// NewRequestProb is the per-cycle arrival probability.
	NewRequestProb float64 `mapstructure:"newRequestProb" yaml:"newRequestProb"`
	// BlockedIPRanges is a comma-separated list of start-end address ranges.
	BlockedIPRanges string `mapstructure:"blockedIpRanges" yaml:"blockedIpRanges"`

	// Seed seeds the random source. 0 asks the caller to derive one.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
	// ParallelTicks advances busy workers concurrently.
	ParallelTicks bool `mapstructure:"parallelTicks" yaml:"parallelTicks"`

	// LogFile is the text journal path.
	LogFile string `mapstructure:"logFile" yaml:"logFile"`
	// LogMaxSizeMB is the journal size that triggers rotation (0 disables).
	LogMaxSizeMB int `mapstructure:"logMaxSizeMB" yaml:"logMaxSizeMB"`
	// LogMaxBackups is the number of rotated journals to keep.
	LogMaxBackups int `mapstructure:"logMaxBackups" yaml:"logMaxBackups"`
	// Console echoes the journal to stdout.
	Console bool `mapstructure:"console" yaml:"console"`
	// DebugLog is the structured JSON debug log path ("" disables it).
	DebugLog string `mapstructure:"debugLog" yaml:"debugLog"`
	// LogLevel is the structured log level: debug, info, warn or error.
	LogLevel string `mapstructure:"logLevel" yaml:"logLevel"`

	// MetricsFile receives a Prometheus text exposition at the end of a run.
	MetricsFile string `mapstructure:"metricsFile" yaml:"metricsFile"`
	// TraceFile receives OpenTelemetry spans as JSON.
	TraceFile string `mapstructure:"traceFile" yaml:"traceFile"`
}

// Default returns a Config with the stock values.
func Default() *Config {
	return &Config{
		InitServers:       10,
		TotalRunTime:      10000,
		MinQueuePerServer: 50,
		MaxQueuePerServer: 80,
		ScaleCooldownTime: 100,
		MinProcessTime:    5,
		MaxProcessTime:    20,
		NewRequestProb:    0.25,
		LogFile:           "log.txt",
		LogMaxSizeMB:      10,
		LogMaxBackups:     3,
		Console:           true,
		LogLevel:          "info",
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault(KeyInitServers, d.InitServers)
	v.SetDefault(KeyTotalRunTime, d.TotalRunTime)
	v.SetDefault(KeyMinQueuePerServer, d.MinQueuePerServer)
	v.SetDefault(KeyMaxQueuePerServer, d.MaxQueuePerServer)
	v.SetDefault(KeyScaleCooldownTime, d.ScaleCooldownTime)
	v.SetDefault(KeyMinProcessTime, d.MinProcessTime)
	v.SetDefault(KeyMaxProcessTime, d.MaxProcessTime)
	v.SetDefault(KeyNewRequestProb, d.NewRequestProb)
	v.SetDefault(KeyBlockedIPRanges, d.BlockedIPRanges)

	v.SetDefault(KeySeed, d.Seed)
	v.SetDefault(KeyParallelTicks, d.ParallelTicks)

	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyLogMaxSizeMB, d.LogMaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, d.LogMaxBackups)
	v.SetDefault(KeyConsole, d.Console)
	v.SetDefault(KeyDebugLog, d.DebugLog)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.SetDefault(KeyMetricsFile, d.MetricsFile)
	v.SetDefault(KeyTraceFile, d.TraceFile)
}

// NewViper returns a viper instance reading from fs with defaults and
// LBSIM_ environment overrides registered.
func NewViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// configType picks the viper codec for a file. Unknown extensions, such as
// the conventional config.txt, are read as flat key=value lines.
func configType(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "" && slices.Contains(viper.SupportedExts, ext) {
		return ext
	}
	return "env"
}

// Blocklist parses BlockedIPRanges, skipping malformed entries.
func (c *Config) Blocklist() request.Blocklist {
	ranges, _ := request.ParseRanges(c.BlockedIPRanges)
	return request.Blocklist(ranges)
}

// SimConfig converts the configuration into engine parameters.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		InitialWorkers: c.InitServers,
		TotalCycles:    c.TotalRunTime,
		MinPerWorker:   c.MinQueuePerServer,
		MaxPerWorker:   c.MaxQueuePerServer,
		Cooldown:       c.ScaleCooldownTime,
		MinDuration:    c.MinProcessTime,
		MaxDuration:    c.MaxProcessTime,
		ArrivalProb:    c.NewRequestProb,
		Blocked:        c.Blocklist(),
		Seed:           c.Seed,
		ParallelTicks:  c.ParallelTicks,
	}
}

// Print writes the effective configuration as aligned key/value rows.
func (c *Config) Print(w io.Writer) error {
	blocked := c.Blocklist()
	ranges := "none"
	if len(blocked) > 0 {
		ranges = strings.ReplaceAll(blocked.String(), ",", ", ")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "===== Current Configuration =====")
	rows := []struct {
		key   string
		value any
	}{
		{KeyInitServers, c.InitServers},
		{KeyTotalRunTime, c.TotalRunTime},
		{KeyMinQueuePerServer, c.MinQueuePerServer},
		{KeyMaxQueuePerServer, c.MaxQueuePerServer},
		{KeyScaleCooldownTime, c.ScaleCooldownTime},
		{KeyMinProcessTime, c.MinProcessTime},
		{KeyMaxProcessTime, c.MaxProcessTime},
		{KeyNewRequestProb, c.NewRequestProb},
		{KeyBlockedIPRanges, ranges},
		{KeySeed, c.Seed},
		{KeyParallelTicks, c.ParallelTicks},
		{KeyLogFile, c.LogFile},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%v\n", r.key, r.value)
	}
	fmt.Fprintln(tw, "=================================")
	return tw.Flush()
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
