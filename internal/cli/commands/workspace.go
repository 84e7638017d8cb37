package commands

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"ctp/internal/config"
	"ctp/internal/discovery"
	"ctp/internal/domain"
	"ctp/internal/execution"
	"ctp/internal/storage"
	"ctp/internal/tree"
)

// workspace discovers the build directories of the project into a registry
type workspace struct {
	config   *config.Config
	scanner  *discovery.Scanner
	catalog  discovery.Discoverer
	filter   *discovery.Filter
	registry *tree.Registry
	logger   *log.Logger
}

// buildDirs returns the build directories under the configured build path
func (w *workspace) buildDirs() ([]string, error) {
	root := w.config.GetBuildPath()
	dirs, err := w.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, errors.Wrapf(domain.ErrNoBuildScope, "no %s under %s, configure the project with testing enabled", discovery.CTestFile, root)
	}
	return dirs, nil
}

// load replaces the registry content with a fresh discovery pass and returns
// the project nodes. A build directory whose discovery fails is dropped;
// the pass fails only if every directory failed or the configuration is unusable.
func (w *workspace) load(ctx context.Context) ([]*tree.Node, error) {
	dirs, err := w.buildDirs()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, dir := range dirs {
		entries, err := w.catalog.Discover(ctx, dir)
		if errors.Is(err, domain.ErrToolPathUnset) {
			return nil, &ResultError{Code: domain.ResultToolPathUnset, Err: err}
		}
		if errors.Is(err, domain.ErrPresetRequired) {
			return nil, &ResultError{Code: domain.ResultPresetRequired, Err: err}
		}
		if err != nil {
			w.logger.Error("test discovery failed", "dir", dir, "err", err)
			w.registry.Remove(dir)
			lastErr = err
			continue
		}

		entries = w.filter.FilterByName(entries, w.config.Flags.NameFilter)
		entries = w.filter.FilterByLabels(entries, w.config.Flags.Labels)
		w.logger.Debug("discovered tests", "dir", dir, "count", len(entries))
		w.registry.Replace(dir, entries)
	}

	if len(w.registry.Projects()) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return w.registry.Projects(), nil
}

// lastRun classifies every leaf against the result file of its build
// directory. Leaves absent from the file get no status.
func lastRun(store storage.Storage, projects []*tree.Node) (map[string]domain.NodeStatus, error) {
	statuses := make(map[string]domain.NodeStatus)
	for _, p := range projects {
		project, _ := p.Project()
		snapshot, err := store.Latest(project.BuildDir)
		if err != nil {
			return nil, err
		}
		if snapshot == nil {
			continue
		}
		for _, leaf := range p.Leaves() {
			entry, _ := leaf.Entry()
			if result, ok := snapshot.Find(entry.Name); ok {
				statuses[leaf.ID] = execution.Classify(leaf.ID, result)
			}
		}
	}
	return statuses, nil
}
