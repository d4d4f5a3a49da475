// Package driver implements the parallel per-CBC counting pass of
// SPEC_FULL.md (spec.md §4.5): a fixed goroutine pool pulling CBCs off a
// shared atomic cursor, running extraction, aggregation, packing, and
// shard dispatch entirely out of per-goroutine scratch.
package driver

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/salzmanlab/bkc/aggregate"
	"github.com/salzmanlab/bkc/anchor"
	"github.com/salzmanlab/bkc/pairwalk"
	"github.com/salzmanlab/bkc/reads"
	"github.com/salzmanlab/bkc/record"
	"github.com/salzmanlab/bkc/shard"
)

// Options configures one counting run. It is built once by the cobra
// command layer and passed to Run unchanged, matching the teacher's
// Options-struct-from-flags pattern in cmd/util.go.
type Options struct {
	LeaderLen   int
	FollowerLen int
	GapLen      int
	CBCLen      int
	NumSplits   int
	NumThreads  int
	MaxCount    uint32
	SampleID    uint64
	Dictionary  *anchor.Dictionary

	// MaxRecordsInBuffer bounds how many records a per-shard scratch
	// buffer accumulates before it is packed and handed to the shard's
	// Sink (spec.md §4.7 "Flushing").
	MaxRecordsInBuffer int

	// Hash selects the leader-to-shard hash family; nil defaults to
	// shard.HashLeader.
	Hash shard.HashFunc

	// Encoding selects the packed record codec; CompactEncoding is the
	// default (spec.md §4.6).
	Encoding Encoding

	// Widths gives the precomputed per-field byte widths for this run.
	Widths record.FieldWidths

	// AggressiveReclaim, supplementing spec.md from the original
	// source's lower-memory mode, drops per-goroutine scratch slices
	// (the pair and triple slices after every CBC, a shard buffer after
	// every flush of it) instead of letting them grow to the CBC's
	// high-water mark and stay there.
	AggressiveReclaim bool
}

// Encoding selects a record.Record packed representation.
type Encoding int

const (
	// CompactEncoding packs records with shared-prefix delta compression
	// (record.CompactEncoder); the default per spec.md §4.6.
	CompactEncoding Encoding = iota
	// FixedWidthEncoding packs records as fixed-width little-endian
	// fields (record.PackFixedWidth).
	FixedWidthEncoding
)

// Stats summarizes one completed run, per spec.md §5's ordering guarantee
// that run totals are only meaningful after every goroutine has returned.
type Stats struct {
	// TotalPairCount is the number of (leader, follower) extractions
	// observed across every CBC, before aggregation.
	TotalPairCount uint64
	// SumPairCount is the sum of every emitted triple's (possibly
	// clamped) count.
	SumPairCount uint64
	// CBCsProcessed is the number of barcodes the pool actually claimed.
	CBCsProcessed uint64
}

// Run processes every CBC in idx, extracting (leader, follower) pairs from
// its reads via prov, aggregating them into counted triples, packing them,
// and dispatching packed blocks to sinks[shard.ShardOf(leader)].
//
// Run returns once every worker goroutine has exited, either because the
// CBC list was exhausted or because a sink write failed and the run was
// cancelled (spec.md §7 "Sink write failure: fatal; propagates to the
// driver which must signal all workers to stop").
func Run(ctx context.Context, opt Options, idx *reads.Index, prov reads.ReadProvider, sinks []shard.Sink) (Stats, error) {
	hash := opt.Hash
	if hash == nil {
		hash = shard.HashLeader
	}

	cbcs := idx.CBCs()
	var cursor int64 = -1

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErrMu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		firstErrMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		firstErrMu.Unlock()
		cancel()
	}

	var totalPairCount, sumPairCount, cbcsProcessed uint64

	var wg sync.WaitGroup
	for g := 0; g < opt.NumThreads; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, opt, idx, prov, sinks, hash, cbcs, &cursor,
				&totalPairCount, &sumPairCount, &cbcsProcessed, setErr)
		}()
	}
	wg.Wait()

	stats := Stats{
		TotalPairCount: atomic.LoadUint64(&totalPairCount),
		SumPairCount:   atomic.LoadUint64(&sumPairCount),
		CBCsProcessed:  atomic.LoadUint64(&cbcsProcessed),
	}

	firstErrMu.Lock()
	defer firstErrMu.Unlock()
	return stats, firstErr
}

// worker is one pool goroutine's body: claim a CBC index via the shared
// cursor, process it entirely out of locally-owned scratch, flush any
// per-shard buffer that reaches opt.MaxRecordsInBuffer, repeat until the
// cursor runs past the end of cbcs or ctx is cancelled.
func worker(
	ctx context.Context,
	opt Options,
	idx *reads.Index,
	prov reads.ReadProvider,
	sinks []shard.Sink,
	hash shard.HashFunc,
	cbcs []uint64,
	cursor *int64,
	totalPairCount, sumPairCount, cbcsProcessed *uint64,
	setErr func(error),
) {
	var pairs []pairwalk.Pair
	var triples []aggregate.Triple

	shardBufs := make([][]record.Record, len(sinks))
	packerScratch := make([]byte, 0, 4096)
	enc := record.NewCompactEncoder(opt.Widths)

	flush := func(s int) {
		if len(shardBufs[s]) == 0 {
			return
		}
		packerScratch = packerScratch[:0]
		if opt.Encoding == FixedWidthEncoding {
			for _, rec := range shardBufs[s] {
				packerScratch = record.PackFixedWidth(packerScratch, rec, opt.Widths)
			}
		} else {
			enc.Reset()
			for _, rec := range shardBufs[s] {
				packerScratch = enc.Append(packerScratch, rec)
			}
		}
		if err := sinks[s].AddPacked(packerScratch); err != nil {
			setErr(errors.Wrapf(err, "bkc/driver: writing shard %d", s))
		}
		if opt.AggressiveReclaim {
			shardBufs[s] = nil
		} else {
			shardBufs[s] = shardBufs[s][:0]
		}
	}

loop:
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		i := atomic.AddInt64(cursor, 1)
		if i >= int64(len(cbcs)) {
			break loop
		}
		cbc := cbcs[i]

		pairs = pairs[:0]
		for _, rid := range idx.Reads(cbc) {
			fileID, localID := reads.UnpackReadID(rid)
			bases := prov.Read(fileID, localID)
			pairs = pairwalk.Extract(bases, opt.LeaderLen, opt.GapLen, opt.FollowerLen, opt.Dictionary, pairs)
		}
		atomic.AddUint64(totalPairCount, uint64(len(pairs)))

		triples = triples[:0]
		triples = aggregate.SortAndGather(pairs, opt.MaxCount, triples)

		var cbcSum uint64
		for _, tr := range triples {
			cbcSum += uint64(tr.Count)
			s := shard.ShardOf(hash, tr.Leader, opt.NumSplits)
			shardBufs[s] = append(shardBufs[s], record.Record{
				SampleID: opt.SampleID,
				Barcode:  cbc,
				Leader:   tr.Leader,
				Follower: tr.Follower,
				Count:    uint64(tr.Count),
			})
			if len(shardBufs[s]) >= opt.MaxRecordsInBuffer {
				flush(s)
			}
		}
		atomic.AddUint64(sumPairCount, cbcSum)
		atomic.AddUint64(cbcsProcessed, 1)

		if opt.AggressiveReclaim {
			pairs = nil
			triples = nil
		}
	}

	// The CBC list is exhausted: flush every shard buffer still holding
	// unwritten records. A worker that returns early because ctx was
	// cancelled (a sink failure elsewhere) skips this: its partially
	// filled buffers are abandoned along with the rest of the run.
	for s := range shardBufs {
		flush(s)
	}
}
