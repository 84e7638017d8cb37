package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	BuildPath   string

	// Tool settings
	CTestPath       string
	CMakePath       string
	BuildConfig     string
	BuildTarget     string
	DefaultArgs     []string
	ExtraArgs       []string
	DebuggerCommand []string

	// Presets
	TestPreset    string
	RequirePreset bool

	// Execution settings
	Jobs              int
	AllowParallelJobs bool

	// Discovery settings
	MinStructuredVersion string

	LogLevel string

	// Paths to ignore when scanning for build directories
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Jobs       int
	NameFilter string
	Labels     []string
	Sequential bool
	NoBuild    bool
	Debug      bool
	Legacy     bool
	ShowLabels bool
	View       bool
	ReportPath string
	LogLevel   string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:          DefaultProjectPath,
		BuildPath:            DefaultBuildPath,
		CTestPath:            DefaultCTestPath,
		CMakePath:            DefaultCMakePath,
		BuildConfig:          DefaultBuildConfig,
		BuildTarget:          DefaultBuildTarget,
		Jobs:                 DefaultJobs,
		AllowParallelJobs:    true,
		MinStructuredVersion: DefaultMinStructuredVersion,
		LogLevel:             DefaultLogLevel,
		Flags:                Flags{Jobs: DefaultJobs},
	}
	cfg.DefaultArgs = append([]string(nil), DefaultCTestArgs...)
	cfg.DebuggerCommand = append([]string(nil), DefaultDebuggerCommand...)
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.ApplyFlags(flags)
	return cfg
}

// ApplyFlags stores the flags and lets them override file settings
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Jobs > 0 {
		c.Jobs = flags.Jobs
	}
	if flags.Sequential {
		c.AllowParallelJobs = false
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
}

// ReadFile merges .ctp.yaml from the project root and CTP_* environment variables.
// A missing config file is not an error.
func (c *Config) ReadFile() error {
	v := viper.New()
	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(c.ProjectPath)
	v.SetEnvPrefix("CTP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setStrings := func(key string, dst *[]string) {
		if v.IsSet(key) {
			*dst = v.GetStringSlice(key)
		}
	}

	setString("build_path", &c.BuildPath)
	setString("ctest_path", &c.CTestPath)
	setString("cmake_path", &c.CMakePath)
	setString("build_config", &c.BuildConfig)
	setString("build_target", &c.BuildTarget)
	setString("test_preset", &c.TestPreset)
	setString("min_structured_version", &c.MinStructuredVersion)
	setString("log_level", &c.LogLevel)
	setStrings("default_args", &c.DefaultArgs)
	setStrings("extra_args", &c.ExtraArgs)
	setStrings("debugger_command", &c.DebuggerCommand)
	setStrings("paths_to_ignore", &c.PathsToIgnore)

	if v.IsSet("jobs") {
		c.Jobs = v.GetInt("jobs")
	}
	if v.IsSet("allow_parallel_jobs") {
		c.AllowParallelJobs = v.GetBool("allow_parallel_jobs")
	}
	if v.IsSet("require_preset") {
		c.RequirePreset = v.GetBool("require_preset")
	}
	return nil
}

// GetBuildPath returns the root under which build directories are searched
func (c *Config) GetBuildPath() string {
	if filepath.IsAbs(c.BuildPath) {
		return c.BuildPath
	}
	return filepath.Join(c.ProjectPath, c.BuildPath)
}

// GetReportPath returns the absolute path of the run report, or "" when not requested
func (c *Config) GetReportPath() string {
	p := c.Flags.ReportPath
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// JobCount returns the -j value handed to ctest
func (c *Config) JobCount() int {
	if !c.AllowParallelJobs || c.Jobs <= 0 {
		return 1
	}
	return c.Jobs
}

// Environment returns the process environment merged with the project's .env file
func (c *Config) Environment() ([]string, error) {
	env := os.Environ()
	envPath := filepath.Join(c.ProjectPath, DefaultEnvFile)
	vars, err := godotenv.Read(envPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return env, nil
		}
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}
	for k, val := range vars {
		env = append(env, fmt.Sprintf("%s=%s", k, val))
	}
	return env, nil
}
