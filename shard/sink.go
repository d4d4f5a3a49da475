package shard

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/smallnest/ringbuffer"
)

// Magic identifies a bkc shard file, mirrored on the teacher's
// kmcp/cmd/index/serialization.go Magic/Version header convention.
var Magic = [4]byte{'.', 'b', 'k', 'c'}

// Version is the shard file format version.
const Version uint8 = 1

// ErrClosed is returned by AddPacked after Close has been called.
var ErrClosed = errors.New("bkc/shard: sink is closed")

// Sink is the append-only, thread-safe shard contract of spec.md §4.7:
// "add_packed is thread-safe and appends atomically; packed buffers from
// different threads may interleave at the block level but never within a
// block."
type Sink interface {
	// AddPacked appends one self-contained packed block to the shard.
	AddPacked(block []byte) error
	// Close flushes and releases any resources held by the sink.
	Close() error
}

// FileSink is a Sink backed by a single file, optionally pgzip-compressed.
// Blocks handed to AddPacked are queued through a bounded ring buffer and
// written by a single background goroutine, so a slow disk applies
// backpressure to callers (spec.md §5: "Threads may block only inside
// shard-sink add_packed calls") instead of letting queued blocks grow
// without bound — the same dispatch-throttling idiom the teacher uses with
// smallnest/ringbuffer in cmd/compute.go and cmd/util-db.go.
type FileSink struct {
	mu     sync.Mutex
	f      *os.File
	gz     *pgzip.Writer
	bw     *bufio.Writer
	queue  chan []byte
	tokens *ringbuffer.RingBuffer
	done   chan struct{}
	werr   error
	werrMu sync.Mutex
	closed bool
}

// queueDepth bounds the number of packed blocks that may be in flight
// between AddPacked and the background writer goroutine.
const queueDepth = 64

// NewFileSink opens (truncating) path and returns a FileSink that writes
// the shard magic/version header immediately. When compress is true,
// blocks are written through a pgzip.Writer at level.
func NewFileSink(path string, compress bool, level int) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bkc/shard: creating %s", path)
	}

	bw := bufio.NewWriterSize(f, 1<<20)

	s := &FileSink{
		f:      f,
		bw:     bw,
		queue:  make(chan []byte, queueDepth),
		tokens: ringbuffer.New(queueDepth),
		done:   make(chan struct{}),
	}

	var w io.Writer = bw
	if compress {
		gz, err := pgzip.NewWriterLevel(bw, level)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "bkc/shard: creating pgzip writer")
		}
		s.gz = gz
		w = gz
	}

	if _, err := w.Write(Magic[:]); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "bkc/shard: writing magic")
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "bkc/shard: writing version")
	}

	go s.run(w)
	return s, nil
}

func (s *FileSink) run(w io.Writer) {
	defer close(s.done)
	var lenBuf [4]byte
	for block := range s.queue {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(block)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			s.setErr(errors.Wrap(err, "bkc/shard: writing block length"))
			s.tokens.ReadByte()
			continue
		}
		if _, err := w.Write(block); err != nil {
			s.setErr(errors.Wrap(err, "bkc/shard: writing block"))
		}
		s.tokens.ReadByte()
	}
}

func (s *FileSink) setErr(err error) {
	s.werrMu.Lock()
	if s.werr == nil {
		s.werr = err
	}
	s.werrMu.Unlock()
}

func (s *FileSink) err() error {
	s.werrMu.Lock()
	defer s.werrMu.Unlock()
	return s.werr
}

// AddPacked implements Sink. It copies block before queuing it, since the
// caller (a per-goroutine packer scratch buffer) reuses its backing array
// across flushes.
func (s *FileSink) AddPacked(block []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if err := s.err(); err != nil {
		return err
	}

	cp := make([]byte, len(block))
	copy(cp, block)

	s.tokens.WriteByte(0) // blocks if queueDepth in-flight blocks are outstanding
	s.queue <- cp
	return s.err()
}

// Close flushes all queued blocks, closes any gzip writer, and closes the
// underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.queue)
	<-s.done

	var err error
	if s.gz != nil {
		if e := s.gz.Close(); e != nil {
			err = e
		}
	}
	if e := s.bw.Flush(); e != nil && err == nil {
		err = e
	}
	if e := s.f.Close(); e != nil && err == nil {
		err = e
	}
	if werr := s.err(); werr != nil {
		return werr
	}
	return err
}

// NewSinks creates numSplits FileSinks named "<prefix>.<i>.bkc" (optionally
// ".gz") in dir.
func NewSinks(dir, prefix string, numSplits int, compress bool, level int) ([]Sink, error) {
	sinks := make([]Sink, 0, numSplits)
	for i := 0; i < numSplits; i++ {
		name := shardFileName(prefix, i, compress)
		s, err := NewFileSink(filepath.Join(dir, name), compress, level)
		if err != nil {
			for _, opened := range sinks {
				opened.Close()
			}
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func shardFileName(prefix string, i int, compress bool) string {
	name := prefix + "." + strconv.Itoa(i) + ".bkc"
	if compress {
		name += ".gz"
	}
	return name
}
