package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shipq/proptest/cli"
	"github.com/shipq/proptest/inifile"
	"github.com/shipq/proptest/internal/config"
	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/persist"
	"github.com/shipq/proptest/persist/sqlstore"
	"github.com/shipq/proptest/project"
	"github.com/shipq/proptest/rng"
	"github.com/shipq/proptest/runner"
)

type app struct {
	out  *cli.Output
	json bool
}

// errMalformed is returned by check when the file has problems.
var errMalformed = errors.New("persistence file has malformed lines")

func (a *app) store(path string) *persist.FileStore {
	return persist.NewFileStore(path, logging.New(a.out.Err))
}

func (a *app) print(r persist.Record) {
	if a.json {
		logging.NewPrettyJSON(a.out.Out).Info("record",
			"line", r.Line, "seed", r.Seed.String(), "comment", r.Comment)
		return
	}
	if r.Comment == "" {
		a.out.Infof("%s", r.Seed)
		return
	}
	a.out.Infof("%s  # %s", r.Seed, r.Comment)
}

// shrunkValue recovers the value rendering from a record comment.
func shrunkValue(r persist.Record) string {
	return strings.TrimPrefix(r.Comment, "shrinks to ")
}

func (a *app) list(path string) error {
	records, err := a.store(path).Records()
	if err != nil {
		return err
	}
	for _, r := range records {
		a.print(r)
	}
	if !a.json {
		a.out.Infof("%d seeds", len(records))
	}
	return nil
}

func (a *app) check(path string) error {
	records, problems, err := a.store(path).Lint()
	if err != nil {
		return err
	}
	if problems > 0 {
		return fmt.Errorf("%w: %d of %d data lines", errMalformed, problems, problems+len(records))
	}
	a.out.Successf("%s: %d seeds, no problems", path, len(records))
	return nil
}

func (a *app) export(ctx context.Context, path, dbURL, test string) error {
	records, err := a.store(path).Records()
	if err != nil {
		return err
	}

	db, err := sqlstore.Open(ctx, dbURL, test)
	if err != nil {
		return err
	}
	defer db.Close()

	added := 0
	for _, r := range records {
		ok, err := db.Add(ctx, r.Seed, shrunkValue(r))
		if err != nil {
			return err
		}
		if ok {
			added++
		}
	}
	a.out.Successf("exported %d of %d seeds to %s", added, len(records), test)
	return nil
}

func (a *app) importSeeds(ctx context.Context, dbURL, test, path string) error {
	db, err := sqlstore.Open(ctx, dbURL, test)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Records(ctx)
	if err != nil {
		return err
	}

	file := a.store(path)
	existing, err := file.Records()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	have := make(map[rng.Seed]bool, len(existing))
	for _, r := range existing {
		have[r.Seed] = true
	}

	added := 0
	for _, r := range records {
		if have[r.Seed] {
			continue
		}
		file.Save(r.Seed, shrunkValue(r))
		have[r.Seed] = true
		added++
	}
	a.out.Successf("imported %d of %d seeds into %s", added, len(records), path)
	return nil
}

func (a *app) watch(ctx context.Context, path string) error {
	err := a.store(path).Watch(ctx, a.print)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) init(dir string) error {
	path := filepath.Join(dir, project.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	d := runner.Defaults()
	f := &inifile.File{}
	f.Set(config.Section, config.KeyCases, strconv.FormatUint(uint64(d.Cases), 10))
	f.Set(config.Section, config.KeyMaxLocalRejects, strconv.FormatUint(uint64(d.MaxLocalRejects), 10))
	f.Set(config.Section, config.KeyMaxGlobalRejects, strconv.FormatUint(uint64(d.MaxGlobalRejects), 10))
	f.Set(config.Section, config.KeyMaxFlatMapRegens, strconv.FormatUint(uint64(d.MaxFlatMapRegens), 10))
	f.Set(config.Section, config.KeyFailurePersistence, d.FailurePersistence.String())
	f.Set(config.Section, config.KeyProjectMarkers, strings.Join(project.DefaultMarkers, ", "))

	if err := f.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.out.Successf("wrote %s", path)
	return nil
}
