// Copyright © 2026 The bkc Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"

	"github.com/salzmanlab/bkc/aggregate"
	"github.com/salzmanlab/bkc/anchor"
	"github.com/salzmanlab/bkc/driver"
	"github.com/salzmanlab/bkc/manifest"
	"github.com/salzmanlab/bkc/reads"
	"github.com/salzmanlab/bkc/record"
	"github.com/salzmanlab/bkc/shard"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "extract and count barcoded leader/follower k-mer pairs",
	Long: `count extracts (leader, follower) k-mer pairs from barcoded reads,
aggregates them per barcode, and writes sharded packed records.`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		timeStart := time.Now()
		defer func() {
			if opt.Verbose {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
		}()

		leaderLen := getFlagPositiveInt(cmd, "leader-len")
		followerLen := getFlagPositiveInt(cmd, "follower-len")
		gapLen := getFlagNonNegativeInt(cmd, "gap-len")
		cbcLen := getFlagPositiveInt(cmd, "cbc-len")
		numSplits := getFlagPositiveInt(cmd, "n-splits")
		maxCount := getFlagPositiveInt(cmd, "max-count")
		sampleID := getFlagUint64(cmd, "sample-id")
		outDir := getFlagExpandedPath(cmd, "out-dir")
		force := getFlagBool(cmd, "force")
		compress := getFlagBool(cmd, "compress")
		compressionLevel := getFlagInt(cmd, "compression-level")
		anchorDictFile := getFlagExpandedPath(cmd, "anchor-dict")
		predefinedCBCFile := getFlagExpandedPath(cmd, "predefined-cbc")
		maxRecordsInBuffer := getFlagPositiveInt(cmd, "buffer-size")
		aggressiveReclaim := getFlagBool(cmd, "aggressive-reclaim")
		useXXH3 := getFlagBool(cmd, "hash-xxh3")

		if maxCount > 1<<32-1 {
			checkError(fmt.Errorf("value of flag --max-count is too big"))
		}

		makeOutDir(outDir, force)

		inDir := getFlagExpandedPath(cmd, "in-dir")
		var files []string
		if inDir != "" {
			reFileStr := getFlagString(cmd, "file-regexp")
			reFile, err := regexp.Compile(reFileStr)
			checkError(errors.Wrapf(err, "--file-regexp %q", reFileStr))
			files, err = reads.DiscoverChunks(inDir, reFile, opt.NumCPUs)
			checkError(errors.Wrap(err, inDir))
			if len(files) == 0 {
				checkError(fmt.Errorf("no files matching --file-regexp %q found under --in-dir %s", reFileStr, inDir))
			}
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		}
		if opt.Verbose {
			log.Infof("%d input file(s) given", len(files))
		}

		var dict *anchor.Dictionary
		if anchorDictFile != "" {
			var err error
			dict, err = anchor.LoadDictionaryMmap(anchorDictFile, leaderLen)
			checkError(errors.Wrap(err, anchorDictFile))
			if opt.Verbose {
				log.Infof("loaded %d accepted anchors from %s", dict.Len(), anchorDictFile)
			}
		}

		if opt.Verbose {
			log.Info("loading reads ...")
		}
		idx, provider, err := loadReads(files, cbcLen)
		checkError(err)
		if opt.Verbose {
			log.Infof("%d distinct barcodes found", idx.Len())
		}

		if predefinedCBCFile != "" {
			f, err := os.Open(predefinedCBCFile)
			checkError(errors.Wrap(err, predefinedCBCFile))
			allowed, err := reads.LoadPredefinedCBCs(f, cbcLen)
			f.Close()
			checkError(errors.Wrap(err, predefinedCBCFile))
			idx = reads.FilterCBCs(idx, allowed)
			if opt.Verbose {
				log.Infof("restricted to %d predefined barcode(s) from %s", idx.Len(), predefinedCBCFile)
			}
		}

		widths := record.NewFieldWidths(cbcLen, leaderLen, followerLen, uint64(maxCount), sampleID)

		sinks, err := shard.NewSinks(outDir, "bkc", numSplits, compress, compressionLevel)
		checkError(err)

		hash := shard.HashLeader
		if useXXH3 {
			hash = shard.HashLeaderXXH3
		}

		driverOpt := driver.Options{
			LeaderLen:          leaderLen,
			FollowerLen:        followerLen,
			GapLen:             gapLen,
			CBCLen:             cbcLen,
			NumSplits:          numSplits,
			NumThreads:         opt.NumCPUs,
			MaxCount:           uint32(maxCount),
			SampleID:           sampleID,
			Dictionary:         dict,
			MaxRecordsInBuffer: maxRecordsInBuffer,
			Hash:               hash,
			Widths:             widths,
			AggressiveReclaim:  aggressiveReclaim,
		}

		var pbs *mpb.Progress
		var bar *mpb.Bar
		if opt.Verbose {
			pbs = mpb.New(mpb.WithWidth(64))
			bar = pbs.AddBar(int64(idx.Len()),
				mpb.PrependDecorators(
					decor.Name("counting barcodes: "),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(decor.Percentage()),
			)
		}

		ctx := context.Background()
		stats, runErr := driver.Run(ctx, driverOpt, idx, provider, sinks)

		for _, s := range sinks {
			if e := s.Close(); e != nil && runErr == nil {
				runErr = e
			}
		}
		if bar != nil {
			bar.SetCurrent(int64(stats.CBCsProcessed))
			pbs.Wait()
		}
		checkError(runErr)

		shardFiles := make([]string, 0, numSplits)
		for i := 0; i < numSplits; i++ {
			name := fmt.Sprintf("bkc.%d.bkc", i)
			if compress {
				name += ".gz"
			}
			shardFiles = append(shardFiles, name)
		}

		m := manifest.New()
		m.SampleID = sampleID
		m.LeaderLen = leaderLen
		m.FollowerLen = followerLen
		m.GapLen = gapLen
		m.CBCLen = cbcLen
		m.NumSplits = numSplits
		m.MaxCount = uint32(maxCount)
		m.TotalPairCount = stats.TotalPairCount
		m.SumPairCount = stats.SumPairCount
		m.CBCsProcessed = stats.CBCsProcessed
		m.Saturated = aggregate.SaturatedCount()
		m.ShardFiles = shardFiles

		checkError(m.WriteTo(filepath.Join(outDir, manifest.FileName)))

		if opt.Verbose {
			log.Infof("processed %s barcodes, %s pairs extracted, %s pairs counted (%d saturated)",
				humanize.Comma(int64(stats.CBCsProcessed)),
				humanize.Comma(int64(stats.TotalPairCount)),
				humanize.Comma(int64(stats.SumPairCount)),
				m.Saturated)
		}
	},
}

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().IntP("leader-len", "", 16, "leader k-mer length")
	countCmd.Flags().IntP("follower-len", "", 20, "follower k-mer length")
	countCmd.Flags().IntP("gap-len", "", 0, "gap length between leader and follower")
	countCmd.Flags().IntP("cbc-len", "", 16, "cell barcode length")
	countCmd.Flags().IntP("n-splits", "", 16, "number of output shards")
	countCmd.Flags().IntP("max-count", "", 65535, "per-(leader,follower) saturating count ceiling")
	countCmd.Flags().Uint64P("sample-id", "", 0, "numeric sample id stamped into every record")
	countCmd.Flags().StringP("anchor-dict", "d", "", "file of accepted leader anchors (one per line, or TSV with an 'anchor' column)")
	countCmd.Flags().StringP("predefined-cbc", "", "", "file of trusted barcodes (whitespace-separated) restricting the CBC work list before counting")
	countCmd.Flags().StringP("out-dir", "O", "", "output directory for shards and the run manifest")
	countCmd.Flags().BoolP("force", "", false, "overwrite a non-empty --out-dir")
	countCmd.Flags().BoolP("compress", "", true, "gzip-compress shard files")
	countCmd.Flags().IntP("compression-level", "", -1, "gzip compression level (-1 = default)")
	countCmd.Flags().IntP("buffer-size", "", 1024, "records buffered per shard before flushing")
	countCmd.Flags().BoolP("aggressive-reclaim", "", false, "shrink per-barcode scratch buffers after every barcode instead of reusing capacity")
	countCmd.Flags().BoolP("hash-xxh3", "", false, "use the xxh3 leader hash instead of the default murmur-finalizer mix")

	countCmd.Flags().StringP("infile-list", "i", "", "file of input files list (one file per line)")
	countCmd.Flags().StringP("in-dir", "I", "", "directory of pre-split per-barcode-chunk read files, walked in parallel instead of taking explicit file args/--infile-list")
	countCmd.Flags().StringP("file-regexp", "", `\.(fa|fasta|fq|fastq)(\.gz)?$`, "regular expression matching chunk file names under --in-dir")

	if err := countCmd.MarkFlagRequired("out-dir"); err != nil {
		os.Exit(-1)
	}
}
