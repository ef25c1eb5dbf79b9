package walker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/abramin/symmerge/internal/config"
	"github.com/abramin/symmerge/internal/symbols"
)

// Snapshot reads module dumps produced by an external stub walker. Each
// version has its own directory holding one YAML or JSON file per module.
type Snapshot struct {
	fs     afs.Service
	cfg    *config.Config
	root   string
	logger *slog.Logger
}

// NewSnapshot creates a snapshot walker rooted at cfg.Snapshot.Root.
func NewSnapshot(cfg *config.Config, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = slog.Default()
	}
	root := cfg.Snapshot.Root
	if !strings.Contains(root, "://") {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Snapshot{
		fs:     afs.New(),
		cfg:    cfg,
		root:   root,
		logger: logger,
	}
}

// VersionURL returns the directory holding the dumps of version.
func (s *Snapshot) VersionURL(version symbols.Version) string {
	dir := string(version)
	if vc := s.cfg.Version(version); vc != nil && vc.Dir != "" {
		dir = vc.Dir
	}
	return url.Join(s.root, dir)
}

// Walk loads every module dump of version.
func (s *Snapshot) Walk(ctx context.Context, version symbols.Version) ([]*symbols.ModuleSymbol, error) {
	root := s.VersionURL(version)
	exists, err := s.fs.Exists(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", root, err)
	}
	if !exists {
		return nil, fmt.Errorf("snapshot directory %s does not exist", root)
	}

	var files []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return !s.cfg.IsExcludedDir(info.Name()), nil
		}
		fileURL := url.Join(baseURL, parent, info.Name())
		if !isDump(info.Name()) || s.cfg.IsExcludedFile(fileURL) {
			return true, nil
		}
		files = append(files, fileURL)
		return true, nil
	}
	if err := s.fs.Walk(ctx, root, visitor); err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)

	modules := make([]*symbols.ModuleSymbol, 0, len(files))
	for _, fileURL := range files {
		mod, err := s.load(ctx, fileURL)
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}
	s.logger.Debug("loaded snapshot", "version", version, "root", root, "modules", len(modules))
	return modules, nil
}

func (s *Snapshot) load(ctx context.Context, fileURL string) (*symbols.ModuleSymbol, error) {
	data, err := s.fs.DownloadWithURL(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileURL, err)
	}
	mod := &symbols.ModuleSymbol{}
	if err := yaml.Unmarshal(data, mod); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", fileURL, err)
	}
	if mod.FullName == "" {
		return nil, fmt.Errorf("decoding %s: module has no fullname", fileURL)
	}
	if err := mod.Validate(); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", fileURL, err)
	}
	return mod, nil
}

func isDump(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
