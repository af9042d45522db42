package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shipq/proptest/inifile"
	"github.com/shipq/proptest/persist"
)

func writeIni(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "proptest.ini"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write proptest.ini: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("all keys", func(t *testing.T) {
		dir := t.TempDir()
		writeIni(t, dir, `[proptest]
cases = 64
max_local_rejects = 10
max_global_rejects = 20
max_flat_map_regens = 30
failure_persistence = direct:/tmp/seeds.txt
project_markers = go.mod, go.work
rng_seed = nightly
`)

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Path != filepath.Join(dir, "proptest.ini") {
			t.Errorf("Path = %q", cfg.Path)
		}
		checks := []struct {
			name string
			got  *uint32
			want uint32
		}{
			{"cases", cfg.Cases, 64},
			{"max_local_rejects", cfg.MaxLocalRejects, 10},
			{"max_global_rejects", cfg.MaxGlobalRejects, 20},
			{"max_flat_map_regens", cfg.MaxFlatMapRegens, 30},
		}
		for _, c := range checks {
			if c.got == nil || *c.got != c.want {
				t.Errorf("%s = %v, want %d", c.name, c.got, c.want)
			}
		}
		if cfg.FailurePersistence == nil || cfg.FailurePersistence.Mode != persist.Direct ||
			cfg.FailurePersistence.Path != "/tmp/seeds.txt" {
			t.Errorf("FailurePersistence = %+v", cfg.FailurePersistence)
		}
		if !reflect.DeepEqual(cfg.ProjectMarkers, []string{"go.mod", "go.work"}) {
			t.Errorf("ProjectMarkers = %v", cfg.ProjectMarkers)
		}
		if cfg.RNGSeed != "nightly" {
			t.Errorf("RNGSeed = %q", cfg.RNGSeed)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		if !errors.Is(err, ErrNoConfig) {
			t.Errorf("got error %v, want %v", err, ErrNoConfig)
		}
	})

	t.Run("no proptest section", func(t *testing.T) {
		dir := t.TempDir()
		writeIni(t, dir, "[other]\nkey = value\n")

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Cases != nil || cfg.FailurePersistence != nil {
			t.Errorf("expected an empty config, got %+v", cfg)
		}
	})

	t.Run("invalid counter", func(t *testing.T) {
		dir := t.TempDir()
		writeIni(t, dir, "[proptest]\ncases = -3\n")

		_, err := Load(dir)
		if err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Errorf("expected a line-numbered error, got %v", err)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		dir := t.TempDir()
		writeIni(t, dir, "[proptest]\ncases = 3\nshrink_harder = yes\n")

		_, err := Load(dir)
		if err == nil || !strings.Contains(err.Error(), "proptest.shrink_harder") {
			t.Errorf("expected an unknown key error, got %v", err)
		}
	})

	t.Run("invalid persistence", func(t *testing.T) {
		dir := t.TempDir()
		writeIni(t, dir, "[proptest]\nfailure_persistence = sideways\n")

		if _, err := Load(dir); err == nil {
			t.Error("expected an error for an unknown persistence mode")
		}
	})
}

func TestFromFile_EmptyList(t *testing.T) {
	f := &inifile.File{}
	f.Set(Section, KeyProjectMarkers, " , ,")

	cfg, err := FromFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.ProjectMarkers) != 0 {
		t.Errorf("ProjectMarkers = %v, want empty", cfg.ProjectMarkers)
	}
}
