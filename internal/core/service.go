package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/dataquality/internal/logging"
)

// ServiceConfig holds the limits applied by a Service. Zero values fall back
// to the defaults noted on each field.
type ServiceConfig struct {
	MaxFileSize   int64         // bytes per upload, 0 = unlimited
	MaxConcurrent int           // parallel loads (default: 4)
	MaxWait       time.Duration // wait for a load slot (default: 30s)
	LoadTimeout   time.Duration // per load, 0 = none
	SessionTTL    time.Duration // dataset lifetime, 0 = forever
	MaxDatasets   int           // stored datasets, 0 = unlimited
	Report        ReportOptions
}

// Observer receives service events. The metrics package implements it.
type Observer interface {
	DatasetLoaded(rows, columns int, bytes int64, elapsed time.Duration)
	LoadFailed(reason string)
	DatasetCleaned(stages []StageResult)
	CheckRun(check string, elapsed time.Duration)
	DatasetsEvicted(n int)
	DatasetsStored(n int)
}

type nopObserver struct{}

func (nopObserver) DatasetLoaded(int, int, int64, time.Duration) {}
func (nopObserver) LoadFailed(string)                           {}
func (nopObserver) DatasetCleaned([]StageResult)                {}
func (nopObserver) CheckRun(string, time.Duration)              {}
func (nopObserver) DatasetsEvicted(int)                         {}
func (nopObserver) DatasetsStored(int)                          {}

// Service provides dataset loading, quality reports and cleaning.
// It is safe for concurrent use.
type Service struct {
	cfg      ServiceConfig
	store    *Store
	limiter  *UploadLimiter
	observer Observer
}

// NewService creates a Service with the given limits.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		cfg:      cfg,
		store:    NewStore(cfg.SessionTTL, cfg.MaxDatasets),
		limiter:  NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		observer: nopObserver{},
	}
}

// SetObserver installs an event observer. Call before serving requests.
func (s *Service) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// Load parses a CSV upload into a new dataset.
func (s *Service) Load(ctx context.Context, fileName string, r io.Reader) (*Dataset, error) {
	logger := logging.WithFields(ctx, "file", fileName).With(clientAttrs(ctx)...)
	start := time.Now()

	if s.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LoadTimeout)
		defer cancel()
	}

	var (
		table *Table
		size  int64
	)
	err := s.limiter.Do(ctx, func() error {
		counter := NewCountingReader(&contextReader{ctx: ctx, r: r}, 0)
		t, err := readCSV(counter, s.cfg.MaxFileSize)
		size = counter.BytesRead
		table = t
		return err
	})
	if err != nil {
		s.observer.LoadFailed(MapError(err).Code)
		logger.Warn("dataset load failed", "error", err)
		return nil, fmt.Errorf("load %s: %w", fileName, err)
	}

	d := &Dataset{FileName: fileName, Table: table, SizeBytes: size}
	s.put(ctx, d)

	elapsed := time.Since(start)
	s.observer.DatasetLoaded(table.NumRows(), table.NumColumns(), size, elapsed)
	logger.Info("dataset loaded",
		"dataset_id", d.ID,
		"rows", table.NumRows(),
		"columns", table.NumColumns(),
		"bytes", size,
		"duration_ms", elapsed.Milliseconds(),
	)
	return d, nil
}

func (s *Service) put(ctx context.Context, d *Dataset) {
	if evicted := s.store.Put(d); len(evicted) > 0 {
		s.observer.DatasetsEvicted(len(evicted))
		logging.FromContext(ctx).Info("datasets evicted to make room", "count", len(evicted))
	}
	s.observer.DatasetsStored(s.store.Len())
}

// Dataset returns a stored dataset.
func (s *Service) Dataset(id string) (*Dataset, error) {
	return s.store.Get(id)
}

// Datasets returns every live dataset, newest first.
func (s *Service) Datasets() []*Dataset {
	return s.store.List()
}

// Delete drops a dataset from the session.
func (s *Service) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.observer.DatasetsStored(s.store.Len())
	return nil
}

// Report runs every check against a dataset.
func (s *Service) Report(id string) (*Report, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r := BuildReport(d.Table, s.cfg.Report)
	s.observer.CheckRun("report", time.Since(start))
	return r, nil
}

// RunCheck runs a single named check against a dataset.
func (s *Service) RunCheck(id, check string) (any, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := RunCheck(check, d.Table)
	if err != nil {
		return nil, err
	}
	s.observer.CheckRun(check, time.Since(start))
	return out, nil
}

// Clean applies opts to a dataset and stores the result as a new dataset.
// The source dataset is left unchanged.
func (s *Service) Clean(ctx context.Context, id string, opts Options) (*Dataset, error) {
	src, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	result := Apply(src.Table, opts)
	d := &Dataset{
		FileName: src.FileName,
		Table:    result.Table,
		ParentID: src.ID,
		Options:  opts,
		Stages:   result.Stages,
	}
	s.put(ctx, d)
	s.observer.DatasetCleaned(result.Stages)

	logging.WithFields(ctx, clientAttrs(ctx)...).Info("dataset cleaned",
		"source_id", src.ID,
		"dataset_id", d.ID,
		"options", opts.Flags(),
		"rows_before", src.Table.NumRows(),
		"rows_after", d.Table.NumRows(),
	)
	return d, nil
}

// LimiterStatus returns the upload limiter state.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight loads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
