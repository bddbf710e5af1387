// Package probe reads optional files of one repository and caches the answers,
// so the classifier and the detector never fetch the same path twice.
package probe

import (
	"context"
	"strings"

	githubapi "github.com/thep200/a11y-miner/internal/github_api"
	"github.com/thep200/a11y-miner/pkg/log"
)

// Source is the content API of the hosting platform.
type Source interface {
	GetFile(ctx context.Context, fullName, path string) (string, error)
	ListDir(ctx context.Context, fullName, path string) ([]githubapi.ContentEntry, error)
	Readme(ctx context.Context, fullName string) (string, error)
}

type file struct {
	content string
	found   bool
}

type dir struct {
	entries []githubapi.ContentEntry
	found   bool
}

// Probe is bound to one repository and lives as long as its evaluation.
type Probe struct {
	Logger   log.Logger
	FullName string
	source   Source
	files    map[string]file
	dirs     map[string]dir
	readme   *file
}

func New(logger log.Logger, source Source, fullName string) *Probe {
	return &Probe{
		Logger:   logger,
		FullName: fullName,
		source:   source,
		files:    make(map[string]file),
		dirs:     make(map[string]dir),
	}
}

// File returns the content of path and whether it exists. A missing file and
// any non-fatal failure both read as absent; only a cancelled context or a
// fully rejected credential pool is returned as an error.
func (p *Probe) File(ctx context.Context, path string) (string, bool, error) {
	if f, ok := p.files[path]; ok {
		return f.content, f.found, nil
	}
	content, err := p.source.GetFile(ctx, p.FullName, path)
	found := err == nil
	if err = p.absorb(ctx, "file "+path, err); err != nil {
		return "", false, err
	}
	if !found {
		content = ""
	}
	p.files[path] = file{content: content, found: found}
	return content, found, nil
}

// Dir lists path; the root is "".
func (p *Probe) Dir(ctx context.Context, path string) ([]githubapi.ContentEntry, bool, error) {
	if d, ok := p.dirs[path]; ok {
		return d.entries, d.found, nil
	}
	entries, err := p.source.ListDir(ctx, p.FullName, path)
	found := err == nil
	if err = p.absorb(ctx, "dir "+path, err); err != nil {
		return nil, false, err
	}
	d := dir{entries: entries, found: found}
	p.dirs[path] = d
	return d.entries, d.found, nil
}

// Readme fetches the README through the API, falling back to the first
// root-level README.* file.
func (p *Probe) Readme(ctx context.Context) (string, bool, error) {
	if p.readme != nil {
		return p.readme.content, p.readme.found, nil
	}
	content, err := p.source.Readme(ctx, p.FullName)
	found := err == nil
	if err = p.absorb(ctx, "readme", err); err != nil {
		return "", false, err
	}
	if !found {
		entries, ok, err := p.Dir(ctx, "")
		if err != nil {
			return "", false, err
		}
		if ok {
			for _, e := range entries {
				if e.Type == "file" && isReadmeName(e.Name) {
					content, found, err = p.File(ctx, e.Path)
					if err != nil {
						return "", false, err
					}
					if found {
						break
					}
				}
			}
		}
	}
	p.readme = &file{content: content, found: found}
	return content, found, nil
}

func (p *Probe) absorb(ctx context.Context, what string, err error) error {
	if err == nil || githubapi.IsNotFound(err) {
		return nil
	}
	// Timeout của http.Client cũng bọc context.DeadlineExceeded, nên xét ctx chứ không xét err
	if githubapi.IsFatal(err) || ctx.Err() != nil {
		return err
	}
	p.Logger.Warn(ctx, "Probe %s of %s failed, treating as absent: %v", what, p.FullName, err)
	return nil
}

func isReadmeName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "readme" || strings.HasPrefix(lower, "readme.")
}
