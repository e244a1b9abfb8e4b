// Package jsonl reads an evaluation event stream from an io.Reader carrying
// one JSON event per line. It is also the replay path: a recorded event log
// fed back through this source reproduces the exact final tree.
package jsonl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/programme-lv/aggregator/api"
)

type Source struct {
	scanner *bufio.Scanner
}

// New reads plain JSON lines from r.
func New(r io.Reader) *Source {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Source{scanner: sc}
}

// NewZstd reads zstd-compressed JSON lines, the format recorded event logs
// are stored in.
func NewZstd(r io.Reader) (*Source, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd stream: %w", err)
	}
	return New(zr), nil
}

// Next returns the next event or io.EOF at end of stream. Blank lines are
// skipped; a malformed line is an error.
func (s *Source) Next(ctx context.Context) (api.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		return api.Decode([]byte(line))
	}
}
