package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "businesshours/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "none"}, logx.Nop())
	if err != nil || st != nil {
		t.Fatalf("Open(none) = %v, %v; want nil, nil", st, err)
	}
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestStoresRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			cfg := Config{Driver: driver, Path: filepath.Join(t.TempDir(), "bhours.db"), BusyTimeout: time.Second}
			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer st.Close()

			ctx := context.Background()
			base := time.Date(2014, 4, 21, 9, 0, 0, 0, time.UTC)
			entries := []Transition{
				{At: base, Schedule: "office", Kind: Opened, Cron: "0 9 * * 1-5"},
				{At: base.Add(time.Hour), Schedule: "shop", Kind: Opened, Cron: "0 10 * * *"},
				{At: base.Add(10 * time.Hour), Schedule: "office", Kind: Closed, Cron: "0 19 * * 1-5"},
			}
			for _, e := range entries {
				if err := st.AppendTransition(ctx, e); err != nil {
					t.Fatalf("AppendTransition: %v", err)
				}
			}

			got, err := st.RecentTransitions(ctx, "office", 10)
			if err != nil {
				t.Fatalf("RecentTransitions: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if got[0].Kind != Closed || !got[0].At.Equal(entries[2].At) || got[1].Cron != "0 9 * * 1-5" {
				t.Fatalf("unexpected order/content: %+v", got)
			}

			all, err := st.RecentTransitions(ctx, "", 2)
			if err != nil {
				t.Fatalf("RecentTransitions(all): %v", err)
			}
			if len(all) != 2 || all[1].Schedule != "shop" {
				t.Fatalf("limit/all = %+v", all)
			}
		})
	}
}
