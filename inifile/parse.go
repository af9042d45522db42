// Package inifile reads and writes the small INI files proptest uses for
// project-level configuration.
package inifile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// File represents a parsed INI file.
type File struct {
	Sections []Section
}

// Section represents a named section in an INI file.
type Section struct {
	Name   string     // e.g., "proptest"
	Line   int        // line of the header, 0 for sections created by Set
	Values []KeyValue // preserves order
}

// KeyValue represents a key-value pair.
type KeyValue struct {
	Key   string
	Value string
	Line  int
}

// Parse reads an INI file from the given reader. Comments start with '#' or
// ';' at the beginning of a line. Keys before any section and lines without
// '=' are ignored.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var currentSection *Section

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.ToLower(strings.TrimSpace(strings.Trim(line, "[]")))
			f.Sections = append(f.Sections, Section{Name: name, Line: lineno})
			currentSection = &f.Sections[len(f.Sections)-1]
			continue
		}

		if currentSection == nil {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		currentSection.Values = append(currentSection.Values, KeyValue{
			Key:   strings.ToLower(strings.TrimSpace(key)),
			Value: strings.TrimSpace(value),
			Line:  lineno,
		})
	}

	return f, scanner.Err()
}

// ParseFile reads and parses an INI file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Section returns the section with the given name (case-insensitive).
func (f *File) Section(name string) *Section {
	name = strings.ToLower(name)
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i]
		}
	}
	return nil
}

// Get returns the last value for a key in a section.
func (f *File) Get(section, key string) string {
	s := f.Section(section)
	if s == nil {
		return ""
	}
	return s.Get(key)
}

// Get returns the last value for a key (case-insensitive).
func (s *Section) Get(key string) string {
	kv := s.Lookup(key)
	if kv == nil {
		return ""
	}
	return kv.Value
}

// Lookup returns the last entry for a key (case-insensitive), or nil.
func (s *Section) Lookup(key string) *KeyValue {
	key = strings.ToLower(key)
	var result *KeyValue
	for i := range s.Values {
		if s.Values[i].Key == key {
			result = &s.Values[i]
		}
	}
	return result
}

// HasKey returns true if the section contains the given key.
func (s *Section) HasKey(key string) bool {
	return s.Lookup(key) != nil
}

// Set sets a key-value pair in the specified section.
// If the section doesn't exist, it is created.
// If the key already exists, its value is replaced.
func (f *File) Set(section, key, value string) {
	section = strings.ToLower(section)
	key = strings.ToLower(key)

	s := f.Section(section)
	if s == nil {
		f.Sections = append(f.Sections, Section{Name: section})
		s = &f.Sections[len(f.Sections)-1]
	}

	for i := range s.Values {
		if s.Values[i].Key == key {
			s.Values[i].Value = value
			return
		}
	}
	s.Values = append(s.Values, KeyValue{Key: key, Value: value})
}

// Write serializes the INI file to the given writer.
func (f *File) Write(w io.Writer) error {
	for i, section := range f.Sections {
		if _, err := fmt.Fprintf(w, "[%s]\n", section.Name); err != nil {
			return err
		}

		for _, kv := range section.Values {
			if _, err := fmt.Fprintf(w, "%s = %s\n", kv.Key, kv.Value); err != nil {
				return err
			}
		}

		// Blank line between sections, not after the last one
		if i < len(f.Sections)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile writes the INI file to the specified path.
func (f *File) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := f.Write(file); err != nil {
		return err
	}

	return file.Sync()
}
