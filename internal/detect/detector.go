// Package detect decides which catalog tools a repository uses, from tool
// config files, dependency manifests and GitHub Actions workflows.
package detect

import (
	"context"
	"path"
	"strings"

	"github.com/thep200/a11y-miner/internal/catalog"
	"github.com/thep200/a11y-miner/internal/probe"
	"github.com/thep200/a11y-miner/pkg/log"
)

const workflowsDir = ".github/workflows"

// DefaultConfigFiles are tool config files scanned for aliases.
var DefaultConfigFiles = []string{
	".pa11yci",
	".pa11yci.json",
	".pa11yci.yml",
	".pa11yci.yaml",
	".pa11yci.js",
	"pa11y.json",
	"lighthouserc.json",
	".lighthouserc.json",
	"lighthouserc.js",
	".lighthouserc.js",
	"lighthouserc.yml",
	".lighthouserc.yml",
	"lighthouserc.yaml",
	".lighthouserc.yaml",
	"budget.json",
	".axe.json",
	"axe.json",
	"axe-linter.yml",
	".axe-linter.yml",
	"a11y.config.js",
	".a11yrc",
	".a11yrc.json",
}

// Source names where evidence came from.
type Source string

const (
	SourceConfig   Source = "config"
	SourceManifest Source = "manifest"
	SourceWorkflow Source = "workflow"
)

type Evidence struct {
	Tool   string
	Source Source
	Path   string
	Match  string
}

type Report struct {
	Result   catalog.Result
	Evidence []Evidence
}

type Detector struct {
	Logger      log.Logger
	Catalog     *catalog.Catalog
	ConfigFiles []string
	Manifests   []string
}

func NewDetector(logger log.Logger, c *catalog.Catalog) *Detector {
	return &Detector{
		Logger:      logger,
		Catalog:     c,
		ConfigFiles: DefaultConfigFiles,
		Manifests:   DefaultManifests,
	}
}

// Detect scans all three sources and unions their findings. Missing files are
// not errors; only fatal probe errors are returned.
func (d *Detector) Detect(ctx context.Context, p *probe.Probe) (*Report, error) {
	r := &Report{Result: d.Catalog.NewResult()}

	if err := d.scanConfigFiles(ctx, p, r); err != nil {
		return nil, err
	}
	if err := d.scanManifests(ctx, p, r); err != nil {
		return nil, err
	}
	if err := d.scanWorkflows(ctx, p, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Report) add(c *catalog.Catalog, name string, src Source, filePath, match string) {
	if !c.Mark(r.Result, name) {
		return
	}
	canonical, _ := c.Canonical(name)
	r.Evidence = append(r.Evidence, Evidence{Tool: canonical, Source: src, Path: filePath, Match: match})
}

func (d *Detector) scanConfigFiles(ctx context.Context, p *probe.Probe, r *Report) error {
	for _, f := range d.ConfigFiles {
		content, found, err := p.File(ctx, f)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		for _, tool := range d.Catalog.MatchContent(content) {
			r.add(d.Catalog, tool, SourceConfig, f, "")
		}
	}
	return nil
}

func (d *Detector) scanManifests(ctx context.Context, p *probe.Probe, r *Report) error {
	for _, m := range d.Manifests {
		content, found, err := p.File(ctx, m)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		format := FormatFor(m)
		deps, err := format.Dependencies(content)
		if err != nil {
			d.Logger.Debug(ctx, "Skipping unreadable %s in %s: %v", m, p.FullName, err)
			continue
		}
		for _, dep := range deps {
			for _, tool := range d.Catalog.MatchDependency(dep) {
				r.add(d.Catalog, tool, SourceManifest, m, dep)
			}
		}
	}
	return nil
}

func (d *Detector) scanWorkflows(ctx context.Context, p *probe.Probe, r *Report) error {
	entries, found, err := p.Dir(ctx, workflowsDir)
	if err != nil || !found {
		return err
	}
	for _, e := range entries {
		if e.Type != "file" || !isYAML(e.Name) {
			continue
		}
		filePath := e.Path
		if filePath == "" {
			filePath = path.Join(workflowsDir, e.Name)
		}
		content, found, err := p.File(ctx, filePath)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		for _, tool := range d.Catalog.MatchContent(content) {
			r.add(d.Catalog, tool, SourceWorkflow, filePath, "")
		}
		for _, action := range workflowActions(content) {
			r.add(d.Catalog, action, SourceWorkflow, filePath, action)
		}
	}
	return nil
}

func isYAML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}
