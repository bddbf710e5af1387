// Package ledger appends one CSV row per saved repository. The file is the
// authoritative record of what was saved and is read back on startup.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/thep200/a11y-miner/internal/catalog"
	"github.com/thep200/a11y-miner/internal/model"
)

const dateLayout = "2006-01-02"

var fixedColumns = []string{"Repository", "Stars", "LastCommit"}

type Ledger struct {
	Path       string
	Tools      []string
	TrueToken  string
	FalseToken string

	mu sync.Mutex
}

// New binds a ledger to path with one boolean column per tool, in order.
func New(path string, tools []string, trueToken, falseToken string) *Ledger {
	return &Ledger{Path: path, Tools: tools, TrueToken: trueToken, FalseToken: falseToken}
}

func (l *Ledger) Header() string {
	return strings.Join(append(append([]string{}, fixedColumns...), l.Tools...), ",")
}

// Row renders the line for repo, without the trailing newline. The full name
// is always quoted.
func (l *Ledger) Row(repo *model.Repository, result catalog.Result) string {
	fields := make([]string, 0, len(fixedColumns)+len(l.Tools))
	fields = append(fields,
		`"`+strings.ReplaceAll(repo.FullName, `"`, `""`)+`"`,
		strconv.Itoa(repo.Stars),
		repo.LastCommit.UTC().Format(dateLayout),
	)
	for _, tool := range l.Tools {
		if result[tool] {
			fields = append(fields, l.TrueToken)
		} else {
			fields = append(fields, l.FalseToken)
		}
	}
	return strings.Join(fields, ",")
}

// Append writes one row and syncs it. The header is written when the file is
// new or empty; a torn last line from an earlier crash is terminated first.
func (l *Ledger) Append(repo *model.Repository, result catalog.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}
	if st.Size() == 0 {
		b.WriteString(l.Header())
		b.WriteByte('\n')
	} else if torn, err := endsWithoutNewline(f, st.Size()); err != nil {
		return err
	} else if torn {
		b.WriteByte('\n')
	}
	b.WriteString(l.Row(repo, result))
	b.WriteByte('\n')

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append ledger row for %s: %w", repo.FullName, err)
	}
	return f.Sync()
}

func endsWithoutNewline(f *os.File, size int64) (bool, error) {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return false, fmt.Errorf("read ledger tail: %w", err)
	}
	return last[0] != '\n', nil
}

// LoadNames returns the repository column of every data row. A missing file
// yields nothing; malformed rows are skipped.
func (l *Ledger) LoadNames() ([]string, error) {
	f, err := os.Open(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var names []string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return names, fmt.Errorf("read ledger: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == fixedColumns[0] {
				continue
			}
		}
		if len(rec) > 0 && strings.Contains(rec[0], "/") {
			names = append(names, strings.TrimSpace(rec[0]))
		}
	}
	return names, nil
}
