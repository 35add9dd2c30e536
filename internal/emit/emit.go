// Package emit writes a compiler.Artifacts to disk: the nexus and one
// pool file per language, each marked executable, plus a YAML build
// report listing what was written — mirroring pkg/manifest.Manifest.Save's
// write-then-record shape, generalized from a JSON/YAML snapshot manifest
// to a build report and from os.WriteFile to afs.Service so the same
// writer can target a remote destination without a second code path.
package emit

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/morloc-lang/morloc/internal/compiler"
)

// FileReport records one emitted pool file's destination and size, for the
// build report written alongside the generated sources.
type FileReport struct {
	Path          string `yaml:"path"`
	Lang          string `yaml:"lang"`
	ManifoldCount int    `yaml:"manifold_count"`
}

// Report is the build report written next to the emitted sources.
type Report struct {
	Nexus       string       `yaml:"nexus"`
	Subcommands []string     `yaml:"subcommands"`
	Pools       []FileReport `yaml:"pools"`
}

// Writer writes compiler.Artifacts through an afs.Service, defaulting to
// the local filesystem.
type Writer struct {
	fs afs.Service
}

// New constructs a Writer backed by afs.New's default local service.
func New() *Writer {
	return &Writer{fs: afs.New()}
}

// NewWithService constructs a Writer over a caller-supplied afs.Service,
// for tests or a remote destination.
func NewWithService(fs afs.Service) *Writer {
	return &Writer{fs: fs}
}

// Write uploads the nexus and every pool file under dir, naming each
// pool.<lang> and the nexus nexus.go, both mode 0o755, then writes a
// build-report.yaml summarizing what was emitted.
func (w *Writer) Write(ctx context.Context, dir string, arts *compiler.Artifacts) (*Report, error) {
	nexusPath := filepath.Join(dir, "nexus.go")
	if err := w.fs.Upload(ctx, nexusPath, 0o755, bytes.NewReader([]byte(arts.Nexus.Source))); err != nil {
		return nil, fmt.Errorf("writing nexus: %w", err)
	}

	report := &Report{Nexus: nexusPath, Subcommands: arts.Nexus.Subcommands}

	langs := make([]string, 0, len(arts.Pools))
	for lang := range arts.Pools {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		pf := arts.Pools[lang]
		path := filepath.Join(dir, "pool."+lang)
		if err := w.fs.Upload(ctx, path, 0o755, bytes.NewReader([]byte(pf.Source))); err != nil {
			return nil, fmt.Errorf("writing pool %q: %w", lang, err)
		}
		report.Pools = append(report.Pools, FileReport{Path: path, Lang: lang, ManifoldCount: len(pf.ManifoldIDs)})
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal build report: %w", err)
	}
	reportPath := filepath.Join(dir, "build-report.yaml")
	if err := w.fs.Upload(ctx, reportPath, 0o644, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("writing build report: %w", err)
	}

	return report, nil
}
