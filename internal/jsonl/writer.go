package jsonl

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gowebpki/jcs"
	"github.com/rotisserie/eris"
)

// Encode returns the RFC 8785 canonical JSON encoding of v:
// sorted keys, no insignificant whitespace.
func Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "marshal")
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, eris.Wrap(err, "canonicalize")
	}
	return out, nil
}

// EncodeLines encodes each value as one canonical line.
func EncodeLines[T any](values []T) ([][]byte, error) {
	lines := make([][]byte, 0, len(values))
	for i := range values {
		b, err := Encode(values[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, b)
	}
	return lines, nil
}

// WriteFile truncates path and writes one line per entry.
// Parent directories are created.
func WriteFile(path string, lines [][]byte) error {
	return writeLines(path, lines, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// AppendFile appends one line per entry. Nothing is created when lines is empty.
func AppendFile(path string, lines [][]byte) error {
	if len(lines) == 0 {
		return nil
	}
	return writeLines(path, lines, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func writeLines(path string, lines [][]byte, flag int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create dir %s", dir)
		}
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			f.Close()
			return eris.Wrapf(err, "write %s", path)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return eris.Wrapf(err, "write %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return eris.Wrapf(err, "flush %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}
