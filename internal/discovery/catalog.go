package discovery

import (
	"context"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"

	"ctp/internal/config"
	"ctp/internal/domain"
)

// CommandRunner runs an external command and returns its standard output.
// A non-zero exit must be reported as an error.
type CommandRunner interface {
	Output(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)
}

// Discoverer produces the test catalog of one build directory
type Discoverer interface {
	Discover(ctx context.Context, buildDir string) ([]domain.CatalogEntry, error)
}

var ctestVersionLine = regexp.MustCompile(`ctest version (\S+)`)

// Catalog discovers tests through ctest, preferring the structured json-v1
// listing and falling back to ctest -N on older releases
type Catalog struct {
	config *config.Config
	runner CommandRunner
	logger *log.Logger

	minVersion  *version.Version
	toolVersion *version.Version
	probed      bool
}

// NewCatalog creates a new Catalog
func NewCatalog(cfg *config.Config, runner CommandRunner, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.Default()
	}
	return &Catalog{
		config: cfg,
		runner: runner,
		logger: logger,
	}
}

// minimum returns the lowest ctest release with structured listings. It is
// resolved on first use so that settings read after construction apply.
func (c *Catalog) minimum() *version.Version {
	if c.minVersion != nil {
		return c.minVersion
	}
	v, err := version.NewVersion(c.config.MinStructuredVersion)
	if err != nil {
		c.logger.Warn("invalid minimum structured discovery version, using default", "value", c.config.MinStructuredVersion, "err", err)
		v = version.Must(version.NewVersion(config.DefaultMinStructuredVersion))
	}
	c.minVersion = v
	return v
}

// Discover lists the tests of buildDir. The previous catalog is not consulted.
func (c *Catalog) Discover(ctx context.Context, buildDir string) ([]domain.CatalogEntry, error) {
	if c.config.CTestPath == "" {
		return nil, domain.ErrToolPathUnset
	}
	if c.config.RequirePreset && c.config.TestPreset == "" {
		return nil, domain.ErrPresetRequired
	}

	env, err := c.config.Environment()
	if err != nil {
		return nil, err
	}

	if c.useStructured(ctx, buildDir, env) {
		out, err := c.run(ctx, buildDir, env, "--show-only=json-v1")
		if err != nil {
			return nil, err
		}
		return ParseStructuredListing(out)
	}

	out, err := c.run(ctx, buildDir, env, "-N")
	if err != nil {
		return nil, err
	}
	return ParseLegacyListing(string(out)), nil
}

// ToolVersion returns the detected ctest version, or nil before the first probe
func (c *Catalog) ToolVersion() *version.Version {
	return c.toolVersion
}

func (c *Catalog) useStructured(ctx context.Context, buildDir string, env []string) bool {
	if c.config.Flags.Legacy {
		return false
	}
	if !c.probed {
		c.probed = true
		c.toolVersion = c.probeVersion(ctx, buildDir, env)
	}
	return c.toolVersion != nil && c.toolVersion.GreaterThanOrEqual(c.minimum())
}

func (c *Catalog) probeVersion(ctx context.Context, buildDir string, env []string) *version.Version {
	out, err := c.runner.Output(ctx, buildDir, env, c.config.CTestPath, "--version")
	if err != nil {
		c.logger.Warn("cannot determine ctest version, using legacy discovery", "err", err)
		return nil
	}
	v, err := ParseToolVersion(string(out))
	if err != nil {
		c.logger.Warn("cannot parse ctest version, using legacy discovery", "err", err)
		return nil
	}
	c.logger.Debug("detected ctest", "version", v.String())
	return v
}

// ParseToolVersion extracts the version from ctest --version output
func ParseToolVersion(output string) (*version.Version, error) {
	match := ctestVersionLine.FindStringSubmatch(output)
	if match == nil {
		return nil, fmt.Errorf("no version in %q", output)
	}
	return version.NewVersion(match[1])
}

func (c *Catalog) run(ctx context.Context, buildDir string, env []string, listing string) ([]byte, error) {
	args := []string{listing}
	if c.config.TestPreset != "" {
		args = append(args, "--preset", c.config.TestPreset)
	} else {
		args = append(args, "-C", c.config.BuildConfig)
	}
	c.logger.Debug("discovering tests", "dir", buildDir, "args", args)
	out, err := c.runner.Output(ctx, buildDir, env, c.config.CTestPath, args...)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "discover tests in %s", buildDir), domain.ErrToolInvocation)
	}
	return out, nil
}
