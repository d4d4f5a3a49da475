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
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/salzmanlab/bkc/kmer"
	"github.com/salzmanlab/bkc/reads"
)

// loadReads reads every FASTA/FASTQ file in files with
// github.com/shenwei356/bio/seqio/fastx (the same reader the teacher's
// compute.go uses for its sketch-generation loop) and builds a
// reads.Index keyed by the leading cbcLen bases of each record's
// sequence, alongside a reads.RawReadProvider holding the full sequence
// bytes. FASTQ/FASTA parsing and CBC correction are otherwise out of
// scope for the reads package itself (spec.md §1); this loader is the one
// concrete place the CLI needs to turn files into what reads.Index/
// reads.ReadProvider expect.
func loadReads(files []string, cbcLen int) (*reads.Index, reads.RawReadProvider, error) {
	idx := reads.NewIndex()
	provider := make(reads.RawReadProvider, len(files))

	for fileID, file := range files {
		var recs [][]byte

		fastxReader, err := fastx.NewDefaultReader(file)
		if err != nil {
			return nil, nil, errors.Wrap(err, file)
		}

		for {
			record, err := fastxReader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				return nil, nil, errors.Wrap(err, file)
			}

			bases := append([]byte(nil), record.Seq.Seq...)
			if len(bases) < cbcLen {
				continue
			}

			localID := uint64(len(recs))
			recs = append(recs, bases)

			cbc, ok := kmer.EncodeKmer(string(bases[:cbcLen]), cbcLen)
			if !ok {
				continue
			}
			idx.Add(cbc, reads.PackReadID(uint64(fileID), localID))
		}

		provider[fileID] = recs
	}

	return idx, provider, nil
}
