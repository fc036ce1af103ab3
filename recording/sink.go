// Package recording writes time series to durable sinks. Each series is a
// list of (time, value) pairs.
package recording

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/flowpace/flowpace/datarecording"
)

// ErrSinkClosed is returned when appending to a closed sink.
var ErrSinkClosed = errors.New("sink is closed")

// A Sink stores a series of (time, value) pairs.
type Sink interface {
	Append(time, value float64) error
	Close() error
}

// A TextSink writes one "time<TAB>value" line per pair. Numbers are printed
// with six significant digits. Every line is flushed as it is appended.
type TextSink struct {
	lock   sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	closed bool
}

// NewTextSink creates or truncates the file at path. The sink is flushed when
// the program exits through atexit.
func NewTextSink(path string) (*TextSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating sink: %w", err)
	}

	s := &TextSink{
		w:      bufio.NewWriter(f),
		closer: f,
	}

	atexit.Register(func() { _ = s.Close() })

	return s, nil
}

// NewTextSinkWithWriter creates a sink that writes to w. Closing the sink
// closes w if w is an io.Closer.
func NewTextSinkWithWriter(w io.Writer) *TextSink {
	s := &TextSink{w: bufio.NewWriter(w)}

	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}

	return s
}

// FormatValue renders a number the way the sink does.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Append writes one line and flushes it, so that a failing file is reported
// by the append that hits it.
func (s *TextSink) Append(time, value float64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	line := FormatValue(time) + "\t" + FormatValue(value) + "\n"
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}

	return s.w.Flush()
}

// Flush pushes buffered lines to the underlying writer.
func (s *TextSink) Flush() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	return s.w.Flush()
}

// Close flushes the sink. Closing twice does nothing.
func (s *TextSink) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	err := s.w.Flush()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}

	return err
}

// Row is what a TableSink stores.
type Row struct {
	Time  float64
	Value float64
}

// A TableSink stores pairs as rows of a database table.
type TableSink struct {
	recorder datarecording.DataRecorder
	table    string
	closed   bool
}

// NewTableSink creates the table in the recorder. The recorder stays owned by
// the caller.
func NewTableSink(
	recorder datarecording.DataRecorder,
	table string,
) (*TableSink, error) {
	if err := recorder.CreateTable(table, Row{}); err != nil {
		return nil, err
	}

	return &TableSink{recorder: recorder, table: table}, nil
}

// Append inserts one row.
func (s *TableSink) Append(time, value float64) error {
	if s.closed {
		return ErrSinkClosed
	}

	return s.recorder.InsertData(s.table, Row{Time: time, Value: value})
}

// Close flushes the recorder.
func (s *TableSink) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	return s.recorder.Flush()
}

// MultiSink copies every pair to all of its sinks.
type MultiSink []Sink

// Append appends to every sink, even if some fail.
func (m MultiSink) Append(time, value float64) error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Append(time, value))
	}

	return err
}

// Close closes every sink.
func (m MultiSink) Close() error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Close())
	}

	return err
}
