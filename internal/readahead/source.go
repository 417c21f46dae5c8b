// Package readahead reads (and transparently decompresses) an input file on
// a background goroutine, handing fixed-size buffers to the consumer over a
// bounded channel.
//
// The producer blocks once the channel holds QueueDepth buffers, so memory
// stays bounded by BufferSize*(QueueDepth+2) no matter how slow the consumer
// is: QueueDepth queued, one being filled and one being read.
package readahead

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultBufferSize is the size of each read-ahead buffer
	DefaultBufferSize = 256 * 1024
	// DefaultQueueDepth is the number of buffers queued ahead of the consumer
	DefaultQueueDepth = 5
)

// ErrClosed is returned by Read after Close
var ErrClosed = errors.New("read-ahead source closed")

// Options configures a Source
type Options struct {
	BufferSize int
	QueueDepth int
}

func (o Options) withDefaults() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.QueueDepth <= 0 {
		o.QueueDepth = DefaultQueueDepth
	}
	return o
}

// chunk is one message on the queue: either filled bytes or a terminal error
type chunk struct {
	buf []byte
	err error
}

// Source is an io.ReadCloser fed by a background producer
type Source struct {
	queue chan chunk
	free  chan []byte
	stop  chan struct{}
	done  chan struct{}

	cur []byte // buffer being consumed, owned by the consumer
	off int
	err error // terminal error, sticky

	closeOnce sync.Once
	closer    io.Closer
}

// Open opens path and starts reading ahead. Files ending in .gz are gunzipped,
// files ending in .zst or .zstd are zstd-decompressed.
func Open(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	r, closer, err := decompressor(path, f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}

	return New(r, closer, opts), nil
}

// decompressor wraps f according to the file name suffix
func decompressor(path string, f *os.File) (io.Reader, io.Closer, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip header: %w", err)
		}
		return gz, multiCloser{gz, f}, nil
	case strings.HasSuffix(path, ".zst"), strings.HasSuffix(path, ".zstd"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd header: %w", err)
		}
		return zr, multiCloser{zstdCloser{zr}, f}, nil
	default:
		return f, f, nil
	}
}

// New starts reading ahead from r. closer, if not nil, is closed once the
// producer has stopped.
func New(r io.Reader, closer io.Closer, opts Options) *Source {
	opts = opts.withDefaults()

	s := &Source{
		queue:  make(chan chunk, opts.QueueDepth),
		free:   make(chan []byte, opts.QueueDepth+2),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		closer: closer,
	}
	go s.produce(r, opts.BufferSize)
	return s
}

// produce fills buffers until EOF, an error or Close.
func (s *Source) produce(r io.Reader, size int) {
	defer close(s.done)
	defer close(s.queue)

	for {
		var buf []byte
		select {
		case buf = <-s.free:
		default:
			buf = make([]byte, size)
		}

		n, err := fill(r, buf[:size])
		eof := err == io.EOF
		if err != nil && !eof {
			// drop the partial buffer, never hand out bytes read alongside an error
			s.send(chunk{err: fmt.Errorf("read input: %w", err)})
			return
		}

		if n > 0 && !s.send(chunk{buf: buf[:n]}) {
			return
		}
		if eof {
			return
		}
	}
}

// fill reads into buf until it is full or r fails. Unlike io.ReadFull it
// keeps a reader's own io.ErrUnexpectedEOF (a truncated gzip member) apart
// from a clean end of input.
func fill(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		nn, err := r.Read(buf[n:])
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// send queues c, blocking while the queue is full. It returns false when the
// source was closed.
func (s *Source) send(c chunk) bool {
	select {
	case s.queue <- c:
		return true
	case <-s.stop:
		return false
	}
}

// Read implements io.Reader. Bytes arrive in the order they were read from
// the underlying file.
func (s *Source) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for s.off >= len(s.cur) {
		if s.err != nil {
			return 0, s.err
		}
		s.recycle()

		c, ok := <-s.queue
		switch {
		case !ok:
			s.err = io.EOF
			select {
			case <-s.stop:
				s.err = ErrClosed
			default:
			}
		case c.err != nil:
			s.err = c.err
		default:
			s.cur, s.off = c.buf, 0
		}
	}

	n := copy(p, s.cur[s.off:])
	s.off += n
	return n, nil
}

// recycle hands the exhausted buffer back to the producer
func (s *Source) recycle() {
	if s.cur == nil {
		return
	}
	select {
	case s.free <- s.cur[:cap(s.cur)]:
	default:
	}
	s.cur, s.off = nil, 0
}

// Close stops the producer, waits for it to exit and closes the input
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		if s.err == nil {
			s.err = ErrClosed
		}
		s.cur, s.off = nil, 0
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for _, c := range m {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// zstdCloser adapts zstd.Decoder.Close, which has no error result
type zstdCloser struct {
	d *zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}
