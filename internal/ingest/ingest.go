// Package ingest turns uploaded property files into stored properties.
//
// Each call to Ingest parses a file, runs every row through the preprocess
// pipeline and upserts the valid ones. Rows are stored one at a time, so a
// failure on one row never rolls back another. Exactly one upload history
// entry is written per call.
package ingest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/estatebi/internal/activity"
	"github.com/evcraddock/estatebi/internal/events"
	"github.com/evcraddock/estatebi/internal/preprocess"
	"github.com/evcraddock/estatebi/internal/property"
	"github.com/evcraddock/estatebi/internal/region"
	"github.com/evcraddock/estatebi/internal/upload"
)

// DefaultUserID is recorded for uploads made without a signed-in user.
const DefaultUserID = 1

// ErrStoreUnavailable is returned when the database connection itself fails
// mid-batch. Rows stored before the failure stay stored.
var ErrStoreUnavailable = errors.New("property store unavailable")

type regionStore interface {
	List(ctx context.Context) ([]*region.Region, error)
	Create(ctx context.Context, name, city string) (int64, error)
	GetByNameCity(ctx context.Context, name, city string) (int64, error)
}

type propertyStore interface {
	Upsert(ctx context.Context, p *property.Property) (bool, error)
}

type historyStore interface {
	Record(ctx context.Context, e upload.Entry) (int64, error)
}

type activityLog interface {
	Log(ctx context.Context, userID *int64, event, details, ip string) (int64, error)
}

// Upload is one file submitted for ingestion.
type Upload struct {
	Filename  string
	Kind      Kind
	Data      []byte
	UserID    int64
	IPAddress string
}

// Ingester runs the parse, preprocess and persist pipeline.
type Ingester struct {
	imputer    *preprocess.Imputer
	validator  *preprocess.Validator
	regions    regionStore
	properties propertyStore
	history    historyStore
	activity   activityLog
	publisher  events.Publisher
	newBatchID func() string
}

// New creates an Ingester backed by db. A nil publisher disables events.
func New(db *sql.DB, publisher events.Publisher) *Ingester {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Ingester{
		imputer:    preprocess.NewImputer(preprocess.DefaultTables(), nil),
		validator:  preprocess.NewValidator(),
		regions:    region.NewRepository(db),
		properties: property.NewRepository(db),
		history:    upload.NewRepository(db),
		activity:   activity.NewRepository(db),
		publisher:  publisher,
		newBatchID: uuid.NewString,
	}
}

// Ingest parses up and stores its rows. It returns an error only for
// unsupported or unparseable files and for store-level failures; row
// problems are reported in the BatchReport.
func (in *Ingester) Ingest(ctx context.Context, up Upload) (*BatchReport, error) {
	if up.Kind == "" {
		kind, err := KindFromFilename(up.Filename)
		if err != nil {
			return nil, err
		}
		up.Kind = kind
	}

	records, err := Parse(up.Kind, up.Data)
	if err != nil {
		return nil, err
	}

	return in.IngestRecords(ctx, up, records)
}

// IngestRecords runs already-parsed rows through the pipeline.
func (in *Ingester) IngestRecords(ctx context.Context, up Upload, records []preprocess.RawRecord) (*BatchReport, error) {
	start := time.Now()
	var actor *int64
	if up.UserID == 0 {
		up.UserID = DefaultUserID
	} else {
		id := up.UserID
		actor = &id
	}

	regions, err := in.loadRegions(ctx)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		BatchID:  in.newBatchID(),
		Message:  SuccessMessage,
		Filename: up.Filename,
		Total:    len(records),
		Errors:   []RowError{},
	}

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			in.recordInterrupted(ctx, up, report)
			return nil, fmt.Errorf("ingest interrupted after %d of %d rows: %w", i, len(records), err)
		}

		rec := in.imputer.Preprocess(raw)
		result := in.validator.Validate(rec)
		if !result.Valid {
			report.fail(RowError{Line: i + 1, Row: raw, Errors: result.Errors})
			rowsTotal.WithLabelValues("invalid").Inc()
			continue
		}

		if err := in.store(ctx, regions, rec); err != nil {
			if storeUnavailable(err) {
				in.recordInterrupted(ctx, up, report)
				return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			slog.Debug("row not stored", "batch_id", report.BatchID, "line", i+1, "error", err)
			report.fail(RowError{Line: i + 1, Row: raw, Error: err.Error()})
			rowsTotal.WithLabelValues("store_error").Inc()
			continue
		}

		report.Processed++
		rowsTotal.WithLabelValues("processed").Inc()
	}

	report.Status = upload.StatusFor(report.Processed, report.Failed)

	if _, err := in.history.Record(ctx, historyEntry(up, report)); err != nil {
		return nil, fmt.Errorf("recording upload history: %w", err)
	}

	in.afterBatch(ctx, up, actor, report)

	batchesTotal.WithLabelValues(string(report.Status)).Inc()
	batchDuration.Observe(time.Since(start).Seconds())

	slog.Info("upload processed",
		"batch_id", report.BatchID,
		"filename", up.Filename,
		"type", up.Kind.Label(),
		"total", report.Total,
		"processed", report.Processed,
		"failed", report.Failed,
		"status", report.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}

// store resolves the row's region and upserts the property.
func (in *Ingester) store(ctx context.Context, regions *regionCache, rec preprocess.Record) error {
	regionID, err := regions.resolve(ctx, rec.Region, rec.City)
	if err != nil {
		return err
	}

	if _, err := in.properties.Upsert(ctx, property.FromRecord(rec, &regionID)); err != nil {
		return err
	}
	return nil
}

// afterBatch writes the activity log entry and publishes the batch event.
// Failures here are logged and never change the batch outcome. A nil actor
// logs the import as a system event.
func (in *Ingester) afterBatch(ctx context.Context, up Upload, actor *int64, report *BatchReport) {
	details := fmt.Sprintf("Imported %d properties from %s (%d failed)", report.Processed, up.Filename, report.Failed)
	if _, err := in.activity.Log(ctx, actor, activity.EventDataImport, details, up.IPAddress); err != nil {
		slog.Warn("writing import activity", "batch_id", report.BatchID, "error", err)
	}

	ev := events.UploadCompleted{
		BatchID:    report.BatchID,
		UserID:     up.UserID,
		Filename:   up.Filename,
		FileType:   up.Kind.Label(),
		Total:      report.Total,
		Processed:  report.Processed,
		Failed:     report.Failed,
		Status:     string(report.Status),
		FinishedAt: time.Now().UTC(),
	}
	if err := in.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("publishing upload event", "batch_id", report.BatchID, "error", err)
	}
}

// recordInterrupted writes history for a batch that stopped early, so the
// rows already stored are still accounted for.
func (in *Ingester) recordInterrupted(ctx context.Context, up Upload, report *BatchReport) {
	report.Status = upload.StatusFor(report.Processed, report.Total-report.Processed)
	if _, err := in.history.Record(context.WithoutCancel(ctx), historyEntry(up, report)); err != nil {
		slog.Error("recording interrupted upload", "batch_id", report.BatchID, "error", err)
	}
}

func historyEntry(up Upload, report *BatchReport) upload.Entry {
	return upload.Entry{
		UserID:           up.UserID,
		Filename:         up.Filename,
		FileType:         up.Kind.Label(),
		RecordsProcessed: report.Processed,
		RecordsFailed:    report.Total - report.Processed,
		Status:           report.Status,
	}
}

func storeUnavailable(err error) bool {
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

type regionKey struct {
	name, city string
}

// regionCache maps (name, city) to region IDs for the life of one batch,
// creating regions the first time they are seen.
type regionCache struct {
	store regionStore
	ids   map[regionKey]int64
}

func (in *Ingester) loadRegions(ctx context.Context) (*regionCache, error) {
	existing, err := in.regions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading regions: %v", ErrStoreUnavailable, err)
	}

	c := &regionCache{store: in.regions, ids: make(map[regionKey]int64, len(existing))}
	for _, rg := range existing {
		c.ids[regionKey{rg.Name, rg.City}] = rg.ID
	}
	return c, nil
}

func (c *regionCache) resolve(ctx context.Context, name, city string) (int64, error) {
	key := regionKey{name, city}
	if id, ok := c.ids[key]; ok {
		return id, nil
	}

	id, err := c.store.Create(ctx, name, city)
	if err != nil {
		// Another writer may have stored it since the batch started.
		existing, lookupErr := c.store.GetByNameCity(ctx, name, city)
		if lookupErr != nil {
			return 0, fmt.Errorf("creating region %s: %w", name, err)
		}
		id = existing
	}
	c.ids[key] = id
	return id, nil
}
