package persist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/rng"
)

func TestParse_MalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"# header comment",
		"",
		"xs 1 2 3 4 # shrinks to 5",
		"xs 1 2 3",
		"xs 1 2 3 nope",
		"zz 9 9 9 9",
		"lonely",
		"xs 4294967295 0 0 7",
	}, "\n")

	var buf bytes.Buffer
	records, problems, err := Parse(strings.NewReader(input), "seeds.txt", logging.New(&buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Record{
		{Seed: rng.Seed{1, 2, 3, 4}, Comment: "shrinks to 5", Line: 3},
		{Seed: rng.Seed{4294967295, 0, 0, 7}, Line: 8},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if problems != 3 {
		t.Errorf("problems = %d, want 3", problems)
	}

	logs := buf.String()
	for _, want := range []string{"line=4", "line=5", "line=6", "unparsable line", "unknown case type"} {
		if !strings.Contains(logs, want) {
			t.Errorf("diagnostics %q missing %q", logs, want)
		}
	}
	if strings.Contains(logs, "line=7") {
		t.Errorf("single-token line should be ignored silently, got %q", logs)
	}
}

func TestFileStore_LoadWellFormedAndWrongFieldCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := "xs 10 20 30 40 # shrinks to 5\nxs 10 20 30 40 50\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var buf bytes.Buffer
	seeds := NewFileStore(path, logging.New(&buf)).Load()

	if diff := cmp.Diff([]rng.Seed{{10, 20, 30, 40}}, seeds); diff != "" {
		t.Errorf("seeds mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "line=2") {
		t.Errorf("expected a diagnostic for line 2, got %q", buf.String())
	}
}

func TestFileStore_MissingFileIsSilent(t *testing.T) {
	var buf bytes.Buffer
	seeds := NewFileStore(filepath.Join(t.TempDir(), "absent.txt"), logging.New(&buf)).Load()
	if len(seeds) != 0 {
		t.Errorf("expected no seeds, got %v", seeds)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no diagnostics, got %q", buf.String())
	}
}

func TestFileStore_UnreadableIsReported(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	// A directory cannot be scanned as a file.
	seeds := NewFileStore(dir, logging.New(&buf)).Load()
	if len(seeds) != 0 {
		t.Errorf("expected no seeds, got %v", seeds)
	}
	if !strings.Contains(buf.String(), "failed to read") {
		t.Errorf("expected a diagnostic, got %q", buf.String())
	}
}

func TestFileStore_SaveWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	var buf bytes.Buffer
	store := NewFileStore(path, logging.New(&buf))

	store.Save(rng.Seed{1, 2, 3, 4}, "5")
	store.Save(rng.Seed{5, 6, 7, 8}, "\r\n9\r\n")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, fileHeader) {
		t.Errorf("file does not start with the header:\n%s", content)
	}
	if strings.Count(content, "# Seeds for failure cases") != 1 {
		t.Errorf("header written more than once:\n%s", content)
	}
	wantTail := "xs 1 2 3 4 # shrinks to 5\nxs 5 6 7 8 # shrinks to   9  \n"
	if !strings.HasSuffix(content, wantTail) {
		t.Errorf("got:\n%q\nwant suffix:\n%q", content, wantTail)
	}
	if strings.Count(buf.String(), "saving this and future failures") != 1 {
		t.Errorf("expected exactly one creation message, got %q", buf.String())
	}

	if diff := cmp.Diff([]rng.Seed{{1, 2, 3, 4}, {5, 6, 7, 8}}, store.Load()); diff != "" {
		t.Errorf("reloaded seeds mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_SaveFailureIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "seeds.txt")
	var buf bytes.Buffer
	NewFileStore(path, logging.New(&buf)).Save(rng.Seed{1, 2, 3, 4}, "5")
	if !strings.Contains(buf.String(), "failed to append") {
		t.Errorf("expected a diagnostic, got %q", buf.String())
	}
}

func TestFileStore_ConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	store := NewFileStore(path, logging.Discard())

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Save(rng.Seed{uint32(i + 1), 0, 0, 1}, fmt.Sprintf("value %d", i))
			store.Load()
		}(i)
	}
	wg.Wait()

	records, err := store.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != writers {
		t.Errorf("got %d records, want %d", len(records), writers)
	}

	data, _ := os.ReadFile(path)
	if strings.Count(string(data), "# Seeds for failure cases") != 1 {
		t.Errorf("header written more than once under concurrency")
	}
}

func TestFileStore_LoadLongValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	s := NewFileStore(path, logging.Discard())
	s.Save(rng.Seed{1, 2, 3, 4}, "0")
	s.Save(rng.Seed{5, 6, 7, 8}, strings.Repeat("x", 70000))
	s.Save(rng.Seed{9, 9, 9, 9}, "1")

	want := []rng.Seed{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 9, 9, 9}}
	if diff := cmp.Diff(want, s.Load()); diff != "" {
		t.Errorf("seeds mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_Lint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := "xs 1 2 3 4 # shrinks to 5\nxs 1 2 x 4\nzz 1 2 3 4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write seeds: %v", err)
	}

	records, problems, err := NewFileStore(path, logging.Discard()).Lint()
	if err != nil {
		t.Fatalf("Lint() error: %v", err)
	}
	if len(records) != 1 || problems != 2 {
		t.Errorf("got %d records and %d problems, want 1 and 2", len(records), problems)
	}
}
