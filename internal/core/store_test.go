package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeClock is a settable time source for store tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, max int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, max)
	s.now = clock.now
	return s, clock
}

func TestStore_PutGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)

	d := &Dataset{FileName: "a.csv", Table: NewTable("x")}
	s.Put(d)
	if d.ID == "" {
		t.Fatal("Put did not assign an id")
	}
	if d.ExpiresAt.Sub(d.CreatedAt) != time.Hour {
		t.Errorf("ExpiresAt - CreatedAt = %v, want 1h", d.ExpiresAt.Sub(d.CreatedAt))
	}

	got, err := s.Get(d.ID)
	if err != nil || got != d {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if err := s.Delete(d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(d.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Get after Delete err = %v, want ErrDatasetNotFound", err)
	}
	if err := s.Delete(d.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("second Delete err = %v, want ErrDatasetNotFound", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	s, clock := newTestStore(time.Minute, 0)

	old := &Dataset{Table: NewTable("x")}
	s.Put(old)
	clock.advance(30 * time.Second)
	fresh := &Dataset{Table: NewTable("x")}
	s.Put(fresh)

	clock.advance(45 * time.Second)
	if _, err := s.Get(old.ID); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("expired Get err = %v, want ErrDatasetNotFound", err)
	}
	if got := s.List(); len(got) != 1 || got[0] != fresh {
		t.Errorf("List() = %v, want only the fresh dataset", got)
	}

	clock.advance(time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_MaxEvictsOldest(t *testing.T) {
	s, clock := newTestStore(0, 2)

	var ids []string
	for i := 0; i < 3; i++ {
		d := &Dataset{Table: NewTable("x")}
		evicted := s.Put(d)
		ids = append(ids, d.ID)
		if i < 2 && len(evicted) != 0 {
			t.Errorf("put %d evicted %v", i, evicted)
		}
		if i == 2 && (len(evicted) != 1 || evicted[0] != ids[0]) {
			t.Errorf("put %d evicted %v, want [%s]", i, evicted, ids[0])
		}
		clock.advance(time.Second)
	}

	if _, err := s.Get(ids[0]); !errors.Is(err, ErrDatasetNotFound) {
		t.Error("oldest dataset still present")
	}
	if got := s.List(); len(got) != 2 || got[0].ID != ids[2] {
		t.Errorf("List() not newest first: %v", got)
	}
}

// ----------------------------------------------------------------------------
// Service Tests
// ----------------------------------------------------------------------------

type recordingObserver struct {
	nopObserver
	loaded, failed, cleaned, evicted int
}

func (o *recordingObserver) DatasetLoaded(int, int, int64, time.Duration) { o.loaded++ }
func (o *recordingObserver) LoadFailed(string)                           { o.failed++ }
func (o *recordingObserver) DatasetCleaned([]StageResult)                { o.cleaned++ }
func (o *recordingObserver) DatasetsEvicted(n int)                       { o.evicted += n }

func TestService_LoadReportClean(t *testing.T) {
	svc := NewService(ServiceConfig{SessionTTL: time.Hour})
	obs := &recordingObserver{}
	svc.SetObserver(obs)
	ctx := ContextWithClientIP(context.Background(), "10.0.0.1")

	src := "Name, Age, Email\nAl ,-5,a@b.com\nAl ,-5,a@b.com\nBo,30,bad\n"
	d, err := svc.Load(ctx, "people.csv", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.SizeBytes != int64(len(src)) {
		t.Errorf("SizeBytes = %d, want %d", d.SizeBytes, len(src))
	}

	r, err := svc.Report(d.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.Duplicates.Count != 1 {
		t.Errorf("Duplicates.Count = %d, want 1", r.Duplicates.Count)
	}

	cleaned, err := svc.Clean(ctx, d.ID, Options{DropDuplicates: true, TrimWhitespace: true})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if cleaned.ID == d.ID || cleaned.ParentID != d.ID {
		t.Errorf("cleaned id %q parent %q, source %q", cleaned.ID, cleaned.ParentID, d.ID)
	}
	if cleaned.Table.NumRows() != 2 {
		t.Errorf("cleaned rows = %d, want 2", cleaned.Table.NumRows())
	}

	// The source dataset is unchanged.
	src2, _ := svc.Dataset(d.ID)
	if src2.Table.NumRows() != 3 {
		t.Errorf("source rows = %d, want 3", src2.Table.NumRows())
	}

	sum := cleaned.Summary()
	if len(sum.Applied) != 2 || len(sum.Stages) != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if obs.loaded != 1 || obs.cleaned != 1 {
		t.Errorf("observer loaded=%d cleaned=%d, want 1/1", obs.loaded, obs.cleaned)
	}
}

func TestService_LoadErrors(t *testing.T) {
	svc := NewService(ServiceConfig{MaxFileSize: 8})
	obs := &recordingObserver{}
	svc.SetObserver(obs)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyFile},
		{"too large", "a,b\n1,2\n3,4\n", ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(context.Background(), "f.csv", strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if obs.failed != 2 {
		t.Errorf("observer failed = %d, want 2", obs.failed)
	}
	if len(svc.Datasets()) != 0 {
		t.Error("failed loads were stored")
	}
}

func TestService_LoadCancelled(t *testing.T) {
	svc := NewService(ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Load(ctx, "f.csv", strings.NewReader("a\n1\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestService_UnknownDataset(t *testing.T) {
	svc := NewService(ServiceConfig{})

	if _, err := svc.Report("nope"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Report err = %v", err)
	}
	if _, err := svc.RunCheck("nope", "missing"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("RunCheck err = %v", err)
	}
	if _, err := svc.Clean(context.Background(), "nope", Options{}); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Clean err = %v", err)
	}
	if err := svc.Delete("nope"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Delete err = %v", err)
	}
}

func TestService_Sweep(t *testing.T) {
	svc := NewService(ServiceConfig{SessionTTL: time.Minute})
	obs := &recordingObserver{}
	svc.SetObserver(obs)
	clock := &fakeClock{t: time.Now()}
	svc.store.now = clock.now

	if _, err := svc.Load(context.Background(), "f.csv", strings.NewReader("a\n1\n")); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Minute)

	if n := svc.sweep(); n != 1 {
		t.Errorf("sweep() = %d, want 1", n)
	}
	if obs.evicted != 1 {
		t.Errorf("observer evicted = %d, want 1", obs.evicted)
	}
}

func TestService_StartSweeperStops(t *testing.T) {
	svc := NewService(ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
