// Package jsonl reads and writes line-delimited JSON.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
)

// Issue messages for structural failures.
const (
	msgInvalidJSON = "invalid json: "
	msgNotObject   = "json line must be an object"
)

// RawRecord is one JSON object read from a line.
type RawRecord struct {
	Fields     map[string]any // numbers decoded as json.Number
	InputFile  string
	LineNumber int // 1-based
	RawLine    string
}

// Item is either a record or a structural parse issue, never both.
type Item struct {
	Record *RawRecord
	Issue  *domain.ParseIssue
}

// Paths lists the files read for path.
// A regular file is returned as is; a directory yields its *.jsonl files
// in lexicographic order, skipping sub-directories.
func Paths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "stat source %s", path)
	}
	if !info.IsDir() {
		return []string{filepath.Clean(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read source dir %s", path)
	}

	var paths []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		full := filepath.Join(path, e.Name())
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		paths = append(paths, full)
	}
	sort.Strings(paths)
	return paths, nil
}

// Read streams every non-blank line under path to visit, in file then line order.
// Unreadable paths are returned as errors; bad lines become issues.
// An error from visit stops the read and is returned.
func Read(path string, visit func(Item) error) error {
	paths, err := Paths(path)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := readFile(p, visit); err != nil {
			return err
		}
	}
	return nil
}

func readFile(path string, visit func(Item) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	// Lines have no length limit.
	r := bufio.NewReaderSize(f, 64*1024)

	lineNumber := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return eris.Wrapf(err, "read %s", path)
		}
		if line == "" && err == io.EOF {
			return nil
		}

		lineNumber++
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if strings.TrimSpace(line) != "" {
			if verr := visit(parseLine(path, lineNumber, line)); verr != nil {
				return verr
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

func parseLine(path string, lineNumber int, line string) Item {
	issue := func(msg string) Item {
		return Item{Issue: &domain.ParseIssue{
			Message:         msg,
			InputFile:       path,
			InputLineNumber: lineNumber,
			RawLine:         line,
			Kind:            domain.IssueKindStructural,
		}}
	}

	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return issue(msgInvalidJSON + err.Error())
	}
	if _, err := dec.Token(); err != io.EOF {
		return issue(msgInvalidJSON + "unexpected data after top-level value")
	}

	fields, ok := v.(map[string]any)
	if !ok {
		return issue(msgNotObject)
	}
	return Item{Record: &RawRecord{
		Fields:     fields,
		InputFile:  path,
		LineNumber: lineNumber,
		RawLine:    line,
	}}
}

// ReadAll collects every item under path.
func ReadAll(path string) ([]Item, error) {
	var items []Item
	err := Read(path, func(it Item) error {
		items = append(items, it)
		return nil
	})
	return items, err
}

// Compact returns the canonical JSON form of v as a string.
func Compact(v any) string {
	b, err := Encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
