package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"

	"github.com/maltedev/brand-image-scraper/internal/models"
)

// Ledger collects row outcomes for the end-of-run summary.
type Ledger struct {
	mu        sync.RWMutex
	fs        afero.Fs
	runID     string
	startedAt time.Time
	outcomes  []models.Outcome
}

type Report struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Stats      map[string]int   `json:"stats"`
	Outcomes   []models.Outcome `json:"outcomes"`
}

func NewLedger(runID string, fs afero.Fs) *Ledger {
	return &Ledger{
		fs:        fs,
		runID:     runID,
		startedAt: time.Now(),
	}
}

func (l *Ledger) Add(outcome models.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.outcomes = append(l.outcomes, outcome)
}

func (l *Ledger) Outcomes() []models.Outcome {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Outcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

// Stats counts rows per terminal state, plus "total" and "images".
func (l *Ledger) Stats() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := make(map[string]int)
	for _, o := range l.outcomes {
		stats[string(o.State)]++
		stats["images"] += len(o.Uploaded)
	}
	stats["total"] = len(l.outcomes)
	return stats
}

// Save writes the JSON report through a temp file and rename.
func (l *Ledger) Save(path string) error {
	rep := Report{
		RunID:      l.runID,
		StartedAt:  l.startedAt,
		FinishedAt: time.Now(),
		Stats:      l.Stats(),
		Outcomes:   l.Outcomes(),
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := l.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report dir: %w", err)
		}
	}

	tmpFile := path + ".tmp"
	if err := afero.WriteFile(l.fs, tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return l.fs.Rename(tmpFile, path)
}

// Render prints one line per row followed by the per-state totals.
func (l *Ledger) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "SKU", "Brand", "State", "Images", "Product URL"})

	for i, o := range l.Outcomes() {
		t.AppendRow(table.Row{i + 1, o.SKU, o.Brand, o.State, len(o.Uploaded), o.ProductURL})
	}

	stats := l.Stats()
	states := make([]string, 0, len(stats))
	for k := range stats {
		if k != "total" && k != "images" {
			states = append(states, k)
		}
	}
	sort.Strings(states)

	t.AppendSeparator()
	for _, s := range states {
		t.AppendRow(table.Row{"", "", "", s, stats[s], ""})
	}
	t.AppendFooter(table.Row{"", "", "", "total", stats["total"], fmt.Sprintf("%d images", stats["images"])})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
