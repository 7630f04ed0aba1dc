package watch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"businesshours/internal/storage"
	"businesshours/pkg/businesshours"
	logx "businesshours/pkg/logx"
)

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestSnapshotNextFirings(t *testing.T) {
	t.Parallel()
	s := New(Config{Location: time.UTC}, nil, logx.Nop())
	s.now = fixedNow(time.Date(2014, 4, 21, 8, 0, 0, 0, time.UTC)) // Monday

	err := s.Apply(Config{Location: time.UTC}, map[string]*businesshours.BusinessHours{
		"office": businesshours.MustParse("wday{Mon-Fri} hr{9-18}"),
		"always": businesshours.AlwaysOpen(),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	jobs := s.Snapshot()
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2 (always-open schedules register nothing)", len(jobs))
	}
	want := map[storage.Kind]time.Time{
		storage.Opened: time.Date(2014, 4, 21, 9, 0, 0, 0, time.UTC),
		storage.Closed: time.Date(2014, 4, 21, 19, 0, 0, 0, time.UTC),
	}
	for _, j := range jobs {
		if j.Schedule != "office" {
			t.Fatalf("unexpected job %+v", j)
		}
		if !j.Next.Equal(want[j.Kind]) {
			t.Fatalf("%s job next = %v, want %v", j.Kind, j.Next, want[j.Kind])
		}
	}
}

func TestFireRecordsTransition(t *testing.T) {
	t.Parallel()
	st, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(t.TempDir(), "bhours")}, logx.Nop())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer st.Close()

	s := New(Config{Location: time.UTC}, st, logx.Nop())
	at := time.Date(2014, 4, 21, 9, 0, 0, 0, time.UTC)
	s.now = fixedNow(at)
	if err := s.Apply(Config{Location: time.UTC}, map[string]*businesshours.BusinessHours{
		"office": businesshours.MustParse("wday{Mon-Fri} hr{9-18}"),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	events, unsub := s.Subscribe(4)
	defer unsub()
	s.fire("office", storage.Opened, "0 9 * * 1-5")

	select {
	case tr := <-events:
		if tr.Kind != storage.Opened || !tr.At.Equal(at) {
			t.Fatalf("subscriber saw %+v", tr)
		}
	default:
		t.Fatal("no transition published")
	}
	got, err := st.RecentTransitions(context.Background(), "office", 5)
	if err != nil {
		t.Fatalf("RecentTransitions: %v", err)
	}
	if len(got) != 1 || got[0].Cron != "0 9 * * 1-5" {
		t.Fatalf("stored = %+v", got)
	}
}

func TestStartApplyStop(t *testing.T) {
	t.Parallel()
	s := New(Config{Location: time.UTC, Preview: 2}, nil, logx.Nop())
	s.Start(context.Background())

	err := s.Apply(Config{Location: time.FixedZone("X", 3600)}, map[string]*businesshours.BusinessHours{
		"night": businesshours.MustParse("wday{We-Th} hr{21-3}, wday{We-Th} hr{20} min{30-59}"),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// 2 opening + 2 closing crons
	if n := len(s.Snapshot()); n != 4 {
		t.Fatalf("len(Snapshot) = %d, want 4", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	s.Stop(ctx) // idempotent
}
