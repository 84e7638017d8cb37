package cli

import "ctp/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	BuildPath   string
	LogLevel    string

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
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Jobs:       f.Jobs,
		NameFilter: f.NameFilter,
		Labels:     append([]string(nil), f.Labels...),
		Sequential: f.Sequential,
		NoBuild:    f.NoBuild,
		Debug:      f.Debug,
		Legacy:     f.Legacy,
		ShowLabels: f.ShowLabels,
		View:       f.View,
		ReportPath: f.ReportPath,
		LogLevel:   f.LogLevel,
	}
}

// Apply loads the config file of the selected project and lets flags override it
func (f *Flags) Apply(cfg *config.Config) error {
	if f.ProjectPath != "" {
		cfg.ProjectPath = f.ProjectPath
	}
	if err := cfg.ReadFile(); err != nil {
		return err
	}
	if f.BuildPath != "" {
		cfg.BuildPath = f.BuildPath
	}
	cfg.ApplyFlags(f.ToConfigFlags())
	return nil
}
