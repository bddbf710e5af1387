// Package crawler drives the mining loop: query strategies, result pages,
// then classification, tool detection and persistence for every repository.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/catalog"
	"github.com/thep200/a11y-miner/internal/classify"
	"github.com/thep200/a11y-miner/internal/credential"
	"github.com/thep200/a11y-miner/internal/detect"
	githubapi "github.com/thep200/a11y-miner/internal/github_api"
	"github.com/thep200/a11y-miner/internal/ledger"
	"github.com/thep200/a11y-miner/internal/metrics"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/internal/probe"
	"github.com/thep200/a11y-miner/internal/retry"
	"github.com/thep200/a11y-miner/internal/search"
	"github.com/thep200/a11y-miner/internal/store"
	"github.com/thep200/a11y-miner/pkg/log"
)

type Crawler interface {
	Crawl(ctx context.Context) error
}

// Searcher is implemented by *search.Driver.
type Searcher interface {
	Search(ctx context.Context, keywords string, cursor *string, page int) (*search.Page, error)
	Stop(p *search.Page, page int) (bool, string)
}

// Gate is implemented by *classify.Classifier.
type Gate interface {
	IsLibrary(ctx context.Context, in *classify.Input) (bool, error)
	IsWebApplication(ctx context.Context, in *classify.Input) (bool, error)
}

// Detector is implemented by *detect.Detector.
type Detector interface {
	Detect(ctx context.Context, p *probe.Probe) (*detect.Report, error)
}

// Miner is the crawl orchestrator. One repository is fully evaluated before
// the next one starts.
type Miner struct {
	Logger     log.Logger
	Config     *cfg.Config
	Catalog    *catalog.Catalog
	Search     Searcher
	Classifier Gate
	Detector   Detector
	Source     probe.Source
	Ledger     *ledger.Ledger
	State      *store.StateStore
	Processed  *store.ProcessedStore
	Sinks      []Sink
	Metrics    *metrics.Metrics
	Sleep      retry.Sleeper
	Now        func() time.Time
	// Credentials reports the pool with tokens redacted; nil in tests.
	Credentials func() []credential.Credential

	cutoff     time.Time
	pageDelay  atomic.Int64
	queryDelay atomic.Int64

	mu      sync.RWMutex
	session *CrawlSession
}

func NewMiner(logger log.Logger, config *cfg.Config, c *catalog.Catalog) (*Miner, error) {
	cutoff, err := config.Crawl.Cutoff()
	if err != nil {
		return nil, err
	}
	m := &Miner{
		Logger:  logger,
		Config:  config,
		Catalog: c,
		Sleep:   retry.Sleep,
		Now:     time.Now,
		cutoff:  cutoff,
	}
	m.Reconfigure(config)
	return m, nil
}

// Reconfigure picks up the tunables that may change while a crawl runs.
func (m *Miner) Reconfigure(config *cfg.Config) {
	m.pageDelay.Store(int64(config.Crawl.PageDelay()))
	m.queryDelay.Store(int64(config.Crawl.QueryDelay()))
}

// Session returns the running session, nil before Crawl starts.
func (m *Miner) Session() *CrawlSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Crawl runs every strategy from the saved position onwards. It returns nil
// when all strategies are exhausted, and the fatal error otherwise, always
// after persisting state.
func (m *Miner) Crawl(ctx context.Context) error {
	session, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer m.closeSinks(ctx)

	queries := m.Config.Crawl.Queries
	start, cursor, page := session.position()
	if start >= len(queries) {
		start, cursor, page = 0, nil, 1
	}
	if page < 1 {
		page = 1
	}

	for s := start; s < len(queries); s++ {
		if s != start {
			cursor, page = nil, 1
		}
		err := m.runStrategy(ctx, session, s, queries[s], cursor, page)
		if err != nil {
			return m.abort(ctx, session, err)
		}

		// strategy tiếp theo bắt đầu từ đầu
		session.moveTo(s+1, "", nil, 1)
		if err := m.persist(ctx, session); err != nil {
			return err
		}
		if s+1 < len(queries) {
			if err := m.Sleep(ctx, time.Duration(m.queryDelay.Load())); err != nil {
				return m.abort(ctx, session, err)
			}
		}
	}

	// Lần chạy sau lặp lại toàn bộ strategy; tập processed ngăn việc đánh giá lại
	session.moveTo(0, "", nil, 1)
	if err := m.persist(ctx, session); err != nil {
		return err
	}
	m.logCrawlResults(ctx, session)
	return nil
}

// open loads the resume state and the processed set, unioned with the ledger.
func (m *Miner) open(ctx context.Context) (*CrawlSession, error) {
	st, err := m.State.Load()
	if err != nil {
		return nil, fmt.Errorf("load crawl state: %w", err)
	}
	processed, err := m.Processed.Load()
	if err != nil {
		return nil, fmt.Errorf("load processed set: %w", err)
	}
	names, err := m.Ledger.LoadNames()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if n := processed.AddAll(names); n > 0 {
		m.Logger.Warn(ctx, "Recovered %d repositories from the ledger that were missing in the processed set", n)
	}

	session := NewCrawlSession(st, processed, m.Now())
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.Logger.Info(ctx, "Run %s: %d repositories already processed, resuming at strategy %d page %d",
		session.RunID, processed.Len(), st.Strategy, st.Page)
	return session, nil
}

// runStrategy pages through one query. Page-level failures end the strategy;
// only fatal errors are returned.
func (m *Miner) runStrategy(ctx context.Context, session *CrawlSession, idx int, query string, cursor *string, page int) error {
	m.Logger.Info(ctx, "Strategy %d/%d %q from page %d", idx+1, len(m.Config.Crawl.Queries), query, page)
	session.moveTo(idx, query, cursor, page)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := m.Search.Search(ctx, query, cursor, page)
		if err != nil {
			if isFatal(ctx, err) {
				return err
			}
			m.Logger.Error(ctx, "Strategy %q aborted at page %d: %v", query, page, err)
			return nil
		}
		m.Logger.Info(ctx, "Page %d of %q: %d repositories (total %d, fallback %v)",
			page, query, len(p.Repositories), p.TotalCount, p.Fallback)

		for i := range p.Repositories {
			if err := m.evaluate(ctx, session, &p.Repositories[i]); err != nil {
				return err
			}
		}

		cursor = p.EndCursor
		if p.Fallback {
			cursor = nil
		}
		session.moveTo(idx, query, cursor, page+1)
		if err := m.persist(ctx, session); err != nil {
			return err
		}

		if stop, reason := m.Search.Stop(p, page); stop {
			m.Logger.Info(ctx, "Strategy %q finished: %s", query, reason)
			return nil
		}
		page++
		if err := m.Sleep(ctx, time.Duration(m.pageDelay.Load())); err != nil {
			return err
		}
	}
}

// evaluate runs the skip policy, the classifier, detection and the sinks for
// one repository. Every outcome ends with the name in the processed set,
// except a non-fatal classify/detect failure: the repository is counted as
// failed and left out so a later run evaluates it again.
//
// The returned error always stops the crawl. It is either fatal (no usable
// credential, ctx done) or a ledger write failure.
func (m *Miner) evaluate(ctx context.Context, session *CrawlSession, repo *model.Repository) error {
	if session.Processed.Has(repo.FullName) {
		m.skip(session, repo, SkipProcessed)
		return nil
	}
	if reason := m.skipReason(repo); reason != "" {
		m.Logger.Debug(ctx, "Skip %s: %s", repo.FullName, reason)
		m.skip(session, repo, reason)
		return nil
	}

	session.countAnalyzed()
	p := probe.New(m.Logger, m.Source, repo.FullName)
	in := classify.NewInput(repo, p)

	lib, err := m.Classifier.IsLibrary(ctx, in)
	if err != nil {
		return m.failed(ctx, session, repo, err)
	}
	if lib {
		m.skip(session, repo, SkipLibrary)
		return nil
	}
	web, err := m.Classifier.IsWebApplication(ctx, in)
	if err != nil {
		return m.failed(ctx, session, repo, err)
	}
	if !web {
		m.skip(session, repo, SkipNotWeb)
		return nil
	}

	report, err := m.Detector.Detect(ctx, p)
	if err != nil {
		return m.failed(ctx, session, repo, err)
	}
	if err := m.save(ctx, session, repo, report); err != nil {
		return err
	}
	session.Processed.Add(repo.FullName)
	return nil
}

// failed passes fatal errors through and swallows the rest.
func (m *Miner) failed(ctx context.Context, session *CrawlSession, repo *model.Repository, err error) error {
	if isFatal(ctx, err) {
		return err
	}
	m.Logger.Error(ctx, "Evaluating %s failed, will retry on the next run: %v", repo.FullName, err)
	session.countSkip(SkipFailed)
	m.Metrics.Repository(SkipFailed)
	return nil
}

func (m *Miner) skipReason(repo *model.Repository) string {
	c := m.Config.Crawl
	switch {
	case repo.LastCommit.Before(m.cutoff):
		return SkipStale
	case c.SkipForks && repo.Fork:
		return SkipFork
	case c.SkipArchived && repo.Archived:
		return SkipArchived
	case repo.Stars < c.MinStars:
		return SkipStars
	default:
		return ""
	}
}

func (m *Miner) skip(session *CrawlSession, repo *model.Repository, reason string) {
	session.countSkip(reason)
	session.Processed.Add(repo.FullName)
	m.Metrics.Repository(reason)
}

// save writes the ledger row first; it is the only sink whose failure stops
// the run.
func (m *Miner) save(ctx context.Context, session *CrawlSession, repo *model.Repository, report *detect.Report) error {
	if err := m.Ledger.Append(repo, report.Result); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	session.countSaved()
	m.Metrics.Repository("saved")

	detected := m.Catalog.Detected(report.Result)
	for _, tool := range detected {
		m.Metrics.Detection(tool)
	}
	m.Logger.Info(ctx, "Saved %s (%d stars), tools: %v", repo.FullName, repo.Stars, detected)

	msg := model.DetectionMessage{
		RunID:      session.RunID,
		FullName:   repo.FullName,
		Stars:      repo.Stars,
		LastCommit: repo.LastCommit,
		Language:   repo.Language,
		Tools:      report.Result,
		ToolOrder:  m.Catalog.Names(),
	}
	for _, s := range m.Sinks {
		if err := s.Save(ctx, msg); err != nil {
			m.Logger.Warn(ctx, "Sink %s failed for %s: %v", s.Name(), repo.FullName, err)
		}
	}
	return nil
}

func (m *Miner) persist(ctx context.Context, session *CrawlSession) error {
	if err := m.State.Save(session.State(m.Now())); err != nil {
		return fmt.Errorf("save crawl state: %w", err)
	}
	if err := m.Processed.Save(session.Processed); err != nil {
		return fmt.Errorf("save processed set: %w", err)
	}
	m.Logger.Debug(ctx, "State saved (%d processed)", session.Processed.Len())
	return nil
}

// abort persists the last page boundary and returns err.
func (m *Miner) abort(ctx context.Context, session *CrawlSession, err error) error {
	if perr := m.persist(context.WithoutCancel(ctx), session); perr != nil {
		m.Logger.Error(ctx, "Could not persist state while stopping: %v", perr)
	}
	if errors.Is(err, context.Canceled) {
		m.Logger.Warn(ctx, "Crawl interrupted, state saved")
	} else {
		m.Logger.Critical(ctx, "Crawl aborted: %v", err)
	}
	m.logCrawlResults(ctx, session)
	return err
}

func (m *Miner) closeSinks(ctx context.Context) {
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil {
			m.Logger.Error(ctx, "Error closing %s sink: %v", s.Name(), err)
		}
	}
}

func isFatal(ctx context.Context, err error) bool {
	return githubapi.IsFatal(err) || ctx.Err() != nil
}
