package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/catalog"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/engine"
	"go.uber.org/zap"
)

// defaultCatalog lists the bundled cities followed by the descriptors in
// dir. An unreadable dir is logged and skipped.
func defaultCatalog(dir string, logger *zap.Logger) (*catalog.Catalog, error) {
	demos, err := city.Demos()
	if err != nil {
		return nil, fmt.Errorf("loading bundled cities: %w", err)
	}
	cat := catalog.FromDescriptors(demos)
	if dir == "" {
		return cat, nil
	}

	paths, err := city.Scan(dir)
	if err != nil {
		logger.Warn("city directory skipped", zap.String("dir", dir), zap.Error(err))
		return cat, nil
	}
	return catalog.Concat(cat, catalog.FromPaths(paths)), nil
}

// siblingCatalog lists every descriptor next to path, positioned at path.
func siblingCatalog(path string) (*catalog.Catalog, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening city: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("opening city: %s is a directory", path)
	}

	paths, err := city.Scan(filepath.Dir(path))
	if err != nil {
		paths = nil
	}
	idx := -1
	for i, p := range paths {
		if sameFile(p, path) {
			idx = i
			break
		}
	}
	if idx < 0 {
		paths = append([]string{path}, paths...)
		idx = 0
	}

	cat := catalog.FromPaths(paths)
	cat.SetCurrentIndex(idx)
	return cat, idx, nil
}

// openTarget builds the catalog for a command line argument: a descriptor
// file with its siblings, or a bundled city by name.
func openTarget(arg string) (*catalog.Catalog, int, error) {
	cat, idx, err := siblingCatalog(arg)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return cat, idx, err
	}

	demos, derr := city.Demos()
	if derr != nil {
		return nil, 0, derr
	}
	bundled := catalog.FromDescriptors(demos)
	if i, ok := bundled.Find(arg); ok {
		bundled.SetCurrentIndex(i)
		return bundled, i, nil
	}
	return nil, 0, err
}

func sameFile(a, b string) bool {
	ia, errA := os.Stat(a)
	ib, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return os.SameFile(ia, ib)
}

// openEntry loads entry i of cat into eng and records the outcome.
func openEntry(eng *engine.Engine, cat *catalog.Catalog, i int) error {
	d, err := cat.Descriptor(i)
	if err == nil {
		err = eng.Load(d)
	}
	if err != nil {
		cat.SetState(i, catalog.Failed, err)
		return err
	}
	cat.SetState(i, catalog.Ready, nil)
	return nil
}

// resolveCity reads a descriptor file, or a bundled city by name.
func resolveCity(arg string) (*city.Descriptor, error) {
	if _, err := os.Stat(arg); err == nil || !errors.Is(err, os.ErrNotExist) {
		return city.Load(arg)
	}

	demos, err := city.Demos()
	if err != nil {
		return nil, err
	}
	for _, demo := range demos {
		if demo.Name == arg {
			return demo, nil
		}
	}
	return nil, fmt.Errorf("no city file or bundled city named %q", arg)
}
