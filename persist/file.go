package persist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shipq/proptest/logging"
	"github.com/shipq/proptest/rng"
)

// fileLock guards every persistence file access in this process so that
// concurrent test runs do not interleave partial writes. Nothing protects
// two processes beyond the atomicity of O_APPEND writes.
var fileLock sync.RWMutex

const fileHeader = `# Seeds for failure cases proptest has generated in the past. It is
# automatically read and these particular cases re-run before any
# novel cases are generated.
#
# It is recommended to check this file in to source control so that
# everyone who runs the test benefits from these saved cases.
`

// FileStore persists failures in a line-oriented text file:
//
//	xs 1234 5678 9012 3456 # shrinks to 5
type FileStore struct {
	Path   string
	Logger *slog.Logger
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{Path: path, Logger: logger}
}

func (s *FileStore) logger() *slog.Logger {
	return logging.OrDefault(s.Logger)
}

// Load implements Store. A missing file is silently treated as empty.
func (s *FileStore) Load() []rng.Seed {
	records, err := s.Records()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger().Warn("failed to read failure persistence file", "path", s.Path, "error", err)
		}
		return nil
	}
	return Seeds(records)
}

// Records reads every well-formed record of the file. Malformed lines are
// reported as diagnostics and skipped.
func (s *FileStore) Records() ([]Record, error) {
	fileLock.RLock()
	defer fileLock.RUnlock()

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, _, err := Parse(f, s.Path, s.logger())
	return records, err
}

// Lint is Records that also returns the number of malformed lines.
func (s *FileStore) Lint() ([]Record, int, error) {
	fileLock.RLock()
	defer fileLock.RUnlock()

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return Parse(f, s.Path, s.logger())
}

// Parse reads records from r. name identifies the input in diagnostics. It
// returns the well-formed records and the number of malformed lines. A read
// error discards everything read so far.
func Parse(r io.Reader, name string, logger *slog.Logger) ([]Record, int, error) {
	logger = logging.OrDefault(logger)

	var records []Record
	problems := 0

	// Rendered values have no length limit, so neither do lines.
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), math.MaxInt)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		comment := ""
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			comment = strings.TrimSpace(line[idx+1:])
			line = line[:idx]
		}

		parts := strings.Split(strings.TrimSpace(line), " ")
		switch {
		case len(parts) == 5 && parts[0] == "xs":
			seed, err := parseWords(parts[1:])
			if err != nil {
				logger.Warn("unparsable line, ignoring", "file", name, "line", lineno, "error", err)
				problems++
				continue
			}
			records = append(records, Record{Seed: seed, Comment: comment, Line: lineno})

		case len(parts) > 1:
			logger.Warn("unknown case type (corrupt file or newer proptest version?)",
				"file", name, "line", lineno, "type", parts[0])
			problems++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, problems, err
	}

	return records, problems, nil
}

func parseWords(words []string) (rng.Seed, error) {
	var seed rng.Seed
	for i, w := range words {
		v, err := strconv.ParseUint(w, 10, 32)
		if err != nil {
			return rng.Seed{}, err
		}
		seed[i] = uint32(v)
	}
	return seed, nil
}

// FormatRecord renders the data line for seed, without a trailing newline.
// Line breaks inside value are replaced by spaces.
func FormatRecord(seed rng.Seed, value string) string {
	line := fmt.Sprintf("xs %d %d %d %d # shrinks to %s", seed[0], seed[1], seed[2], seed[3], value)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, line)
}

// Save implements Store. The header comment is written first when the file
// does not exist yet.
func (s *FileStore) Save(seed rng.Seed, value string) {
	fileLock.Lock()
	defer fileLock.Unlock()

	info, err := os.Stat(s.Path)
	isNew := err != nil || !info.Mode().IsRegular()

	var buf bytes.Buffer
	if isNew {
		buf.WriteString(fileHeader)
	}
	buf.WriteString(FormatRecord(seed, value))
	buf.WriteByte('\n')

	if err := appendFile(s.Path, buf.Bytes()); err != nil {
		s.logger().Warn("failed to append to failure persistence file", "path", s.Path, "error", err)
		return
	}
	if isNew {
		s.logger().Info("saving this and future failures", "path", s.Path)
	}
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
