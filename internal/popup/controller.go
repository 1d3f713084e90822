// Package popup owns the viewer state: the last loaded browsing record and
// the selected view. It loads, exports, imports and clears the record through
// a storage.Store and hands pages to the render package.
package popup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/runnerr0/quipu/internal/render"
	"github.com/runnerr0/quipu/internal/stats"
	"github.com/runnerr0/quipu/internal/storage"
)

// ExportPrefix is the file name prefix of export artifacts.
const ExportPrefix = "quipu-pacha-"

// Controller is not safe for concurrent use; callers serialize access.
type Controller struct {
	store  storage.Store
	logger *log.Logger
	now    func() time.Time
	limit  int

	record storage.BrowsingRecord
	view   stats.View
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLimit sets the per-panel row cap.
func WithLimit(n int) Option {
	return func(c *Controller) { c.limit = n }
}

// WithView sets the initially selected view.
func WithView(v stats.View) Option {
	return func(c *Controller) { c.view = v }
}

// New creates a Controller with an empty record. Call Load to read the store.
func New(store storage.Store, logger *log.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Controller{
		store:  store,
		logger: logger,
		now:    time.Now,
		limit:  render.DefaultLimit,
		record: storage.EmptyRecord(),
		view:   stats.ViewToday,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the stored record into the controller. It never fails: a
// missing record, a storage error or undecodable data all leave the
// controller with an empty record, and errors are logged.
func (c *Controller) Load(ctx context.Context) storage.BrowsingRecord {
	c.record = c.read(ctx)
	return c.record
}

// Fetch reads the stored record like Load but leaves the cached record
// alone. It only touches the store, so it may run on another goroutine
// while the caller keeps using the controller; hand the result to Apply.
func (c *Controller) Fetch(ctx context.Context) storage.BrowsingRecord {
	return c.read(ctx)
}

// Apply replaces the cached record.
func (c *Controller) Apply(rec storage.BrowsingRecord) {
	c.record = rec
}

func (c *Controller) read(ctx context.Context) storage.BrowsingRecord {
	raw, found, err := c.store.Get(ctx, storage.RecordKey)
	if err != nil {
		c.logger.Error("loading data", "err", err)
		return storage.EmptyRecord()
	}
	if !found {
		return storage.EmptyRecord()
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		c.logger.Error("decoding stored record", "err", err)
		return storage.EmptyRecord()
	}
	return rec
}

func decodeRecord(raw []byte) (storage.BrowsingRecord, error) {
	var rec storage.BrowsingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return storage.EmptyRecord(), err
	}
	rec.Normalize()
	return rec, nil
}

// Record returns the last loaded record.
func (c *Controller) Record() storage.BrowsingRecord {
	return c.record
}

// View returns the selected view.
func (c *Controller) View() stats.View {
	return c.view
}

// Select changes the selected view.
func (c *Controller) Select(v stats.View) {
	c.view = v
}

// Now returns the controller's current time.
func (c *Controller) Now() time.Time {
	return c.now()
}

// Page renders the cached record for the selected view as of now.
func (c *Controller) Page() render.Page {
	return render.Build(c.record, c.view, c.now(), c.limit)
}

// Rows returns the full, uncapped rows of v.
func (c *Controller) Rows(v stats.View) []stats.Row {
	return stats.Rows(c.record, v, c.now())
}

// exportEnvelope is the export artifact. Data is the stored record verbatim.
type exportEnvelope struct {
	ExportDate string          `json:"exportDate"`
	Data       json.RawMessage `json:"data"`
}

// ExportFilename is the artifact name for the current local day.
func (c *Controller) ExportFilename() string {
	return ExportPrefix + stats.DayKey(c.now()) + ".json"
}

// Export re-reads the stored record and writes the export artifact to w.
func (c *Controller) Export(ctx context.Context, w io.Writer) error {
	raw, found, err := c.store.Get(ctx, storage.RecordKey)
	if err != nil {
		c.logger.Error("exporting data", "err", err)
		return fmt.Errorf("read record: %w", err)
	}
	if !found {
		raw, err = json.Marshal(storage.EmptyRecord())
		if err != nil {
			return fmt.Errorf("marshal empty record: %w", err)
		}
	}
	if !json.Valid(raw) {
		c.logger.Error("exporting data", "err", "stored record is not valid JSON")
		return fmt.Errorf("stored record is not valid JSON")
	}

	env := exportEnvelope{
		ExportDate: c.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Data:       raw,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		c.logger.Error("exporting data", "err", err)
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// WriteExport writes the export artifact into dir and returns its path.
func (c *Controller) WriteExport(ctx context.Context, dir string) (string, error) {
	var buf bytes.Buffer
	if err := c.Export(ctx, &buf); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, c.ExportFilename())
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		c.logger.Error("exporting data", "err", err)
		return "", fmt.Errorf("write export file: %w", err)
	}

	c.audit(ctx, "export", path)
	c.logger.Info("exported data", "path", path, "bytes", buf.Len())
	return path, nil
}

// Clear replaces the stored record with an empty one stamped with the
// current time, then reloads. Callers must obtain user confirmation first.
func (c *Controller) Clear(ctx context.Context) error {
	rec, err := c.Reset(ctx)
	if err != nil {
		return err
	}
	c.record = rec
	return nil
}

// Reset is Clear without touching the cached record: it writes the empty
// record and returns the re-read result for Apply.
func (c *Controller) Reset(ctx context.Context) (storage.BrowsingRecord, error) {
	updated := c.now().UnixMilli()
	rec := storage.EmptyRecord()
	rec.LastUpdated = &updated

	raw, err := json.Marshal(rec)
	if err != nil {
		return storage.EmptyRecord(), fmt.Errorf("marshal empty record: %w", err)
	}
	if err := c.store.Set(ctx, storage.RecordKey, raw); err != nil {
		c.logger.Error("clearing data", "err", err)
		return storage.EmptyRecord(), fmt.Errorf("clear record: %w", err)
	}

	c.audit(ctx, "clear", "")
	c.logger.Info("cleared all data")
	return c.read(ctx), nil
}

// Import replaces the stored record with the one read from r. Both a bare
// record and an export artifact are accepted; the record bytes are stored
// unchanged so a later export reproduces them.
func (c *Controller) Import(ctx context.Context, r io.Reader, source string) (storage.BrowsingRecord, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.EmptyRecord(), fmt.Errorf("read import: %w", err)
	}

	raw, err := unwrapRecord(body)
	if err != nil {
		return storage.EmptyRecord(), err
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return storage.EmptyRecord(), fmt.Errorf("decode record: %w", err)
	}
	if err := validate(rec); err != nil {
		return storage.EmptyRecord(), err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return storage.EmptyRecord(), fmt.Errorf("compact record: %w", err)
	}
	if err := c.store.Set(ctx, storage.RecordKey, compact.Bytes()); err != nil {
		c.logger.Error("importing data", "err", err)
		return storage.EmptyRecord(), fmt.Errorf("store record: %w", err)
	}

	c.audit(ctx, "import", source)
	c.logger.Info("imported data", "source", source, "sites", len(rec.Sites), "days", len(rec.DailyStats))
	c.Load(ctx)
	return rec, nil
}

// unwrapRecord returns the "data" member of an export artifact, or body
// itself when it is a bare record.
func unwrapRecord(body []byte) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("import is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("import is not a JSON object")
	}
	if data, ok := fields["data"]; ok {
		if _, hasDate := fields["exportDate"]; hasDate {
			return data, nil
		}
	}
	return body, nil
}

// validate rejects negative counters and malformed day keys.
func validate(rec storage.BrowsingRecord) error {
	for domain, s := range rec.Sites {
		if s.TotalTime < 0 || s.Visits < 0 {
			return fmt.Errorf("site %q has negative counters", domain)
		}
	}
	for key, day := range rec.DailyStats {
		if _, err := time.Parse("2006-01-02", key); err != nil {
			return fmt.Errorf("invalid day key %q", key)
		}
		for domain, d := range day {
			if d.Time < 0 || d.Visits < 0 {
				return fmt.Errorf("day %s site %q has negative counters", key, domain)
			}
		}
	}
	return nil
}

func (c *Controller) audit(ctx context.Context, action, detail string) {
	if err := c.store.RecordAction(ctx, action, detail); err != nil {
		c.logger.Warn("recording action", "action", action, "err", err)
	}
}
