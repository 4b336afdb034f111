package sweeper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recbutton/internal/model"
	"recbutton/internal/store"
)

func newTestSweeper(t *testing.T) (*Sweeper, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()

	db, err := store.OpenSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	outDir := filepath.Join(dir, "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return New(st, outDir), st, outDir
}

// seedAged inserts 10 clips aged 0..9 days, named age<N>.mp4, odd ages
// marked renamed. Files exist for even ages only, so the sweep also
// exercises the missing-file path.
func seedAged(t *testing.T, st *store.Store, outDir string) {
	t.Helper()
	ctx := context.Background()
	for age := 0; age < 10; age++ {
		clip := model.NewClip("/media/src.mkv", fmt.Sprintf("age%d.mp4", age), 0, 10, "Show", "Ep")
		clip.Timestamp = time.Now().AddDate(0, 0, -age).Format(model.TimestampLayout)
		clip.Renamed = age%2 == 1
		if _, err := st.Insert(ctx, clip); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if age%2 == 0 {
			if err := os.WriteFile(filepath.Join(outDir, clip.Output), nil, 0o644); err != nil {
				t.Fatalf("write file: %v", err)
			}
		}
	}
}

func remaining(t *testing.T, st *store.Store) map[string]bool {
	t.Helper()
	entries, err := st.ListRecent(context.Background())
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Output] = true
	}
	return names
}

func TestSweep(t *testing.T) {
	sw, st, outDir := newTestSweeper(t)
	seedAged(t, st, outDir)

	deleted, err := sw.Sweep(context.Background(), 5, false)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 5 {
		t.Errorf("deleted = %d, want 5", deleted)
	}

	// Ages 0-4 survive.
	names := remaining(t, st)
	if len(names) != 5 {
		t.Fatalf("remaining = %d, want 5", len(names))
	}
	for age := 0; age < 5; age++ {
		if !names[fmt.Sprintf("age%d.mp4", age)] {
			t.Errorf("age%d.mp4 should survive", age)
		}
	}

	// Files of swept clips removed from disk.
	for _, age := range []int{6, 8} {
		if _, err := os.Stat(filepath.Join(outDir, fmt.Sprintf("age%d.mp4", age))); !os.IsNotExist(err) {
			t.Errorf("age%d.mp4 file should be deleted", age)
		}
	}
}

func TestSweep_KeepRenamed(t *testing.T) {
	sw, st, outDir := newTestSweeper(t)
	seedAged(t, st, outDir)

	deleted, err := sw.Sweep(context.Background(), 5, true)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	// Ages 6 and 8 go; 5, 7, 9 are renamed and spared.
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	names := remaining(t, st)
	want := []int{0, 1, 2, 3, 4, 5, 7, 9}
	if len(names) != len(want) {
		t.Fatalf("remaining = %d, want %d", len(names), len(want))
	}
	for _, age := range want {
		if !names[fmt.Sprintf("age%d.mp4", age)] {
			t.Errorf("age%d.mp4 should survive", age)
		}
	}
}

func TestSweep_Empty(t *testing.T) {
	sw, _, _ := newTestSweeper(t)

	deleted, err := sw.Sweep(context.Background(), 30, false)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}
