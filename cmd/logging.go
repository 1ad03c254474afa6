// file: cmd/logging.go
// version: 1.0.0
// guid: 7d22d0eb-e29e-4cf1-a241-96e8d10ff11c

package cmd

import (
	"bytes"
	"io"
	"log"
	"strings"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// levelWriter drops log lines tagged below min. Lines without a
// [LEVEL] tag are always written.
type levelWriter struct {
	min int
	out io.Writer
}

func (w *levelWriter) Write(p []byte) (int, error) {
	if lineRank(p) < w.min {
		return len(p), nil
	}
	return w.out.Write(p)
}

func lineRank(p []byte) int {
	open := bytes.IndexByte(p, '[')
	if open < 0 {
		return len(levelRank)
	}
	end := bytes.IndexByte(p[open:], ']')
	if end < 0 {
		return len(levelRank)
	}
	tag := strings.ToLower(string(p[open+1 : open+end]))
	if tag == "warning" {
		tag = "warn"
	}
	if rank, ok := levelRank[tag]; ok {
		return rank
	}
	return len(levelRank)
}

// configureLogging routes the standard logger through a level filter.
func configureLogging(level string, out io.Writer) {
	rank, ok := levelRank[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		rank = levelRank["info"]
	}
	log.SetOutput(&levelWriter{min: rank, out: out})
}
