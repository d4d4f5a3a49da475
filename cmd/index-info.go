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
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"

	"github.com/salzmanlab/bkc/manifest"
)

var indexInfoCmd = &cobra.Command{
	Use:   "index-info",
	Short: "summarize a count run's manifest and shard files",
	Long:  `index-info reads a run's _bkc.yml manifest and prints a per-shard summary table.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			checkError(fmt.Errorf("index-info takes exactly one directory argument"))
		}
		dir := args[0]

		m, err := manifest.FromFile(filepath.Join(dir, manifest.FileName))
		checkError(err)

		tbl, err := prettytable.NewTable(
			prettytable.Column{Header: "shard"},
			prettytable.Column{Header: "bytes"},
		)
		checkError(err)
		tbl.Separator = " "

		var total int64
		for _, name := range m.ShardFiles {
			info, err := os.Stat(filepath.Join(dir, name))
			var size int64
			if err == nil {
				size = info.Size()
			}
			total += size
			tbl.AddRow(name, humanize.Comma(size))
		}
		os.Stdout.Write(tbl.Bytes())

		fmt.Printf("\nsample id:          %d\n", m.SampleID)
		fmt.Printf("leader/follower/gap: %d/%d/%d\n", m.LeaderLen, m.FollowerLen, m.GapLen)
		fmt.Printf("barcodes processed: %s\n", humanize.Comma(int64(m.CBCsProcessed)))
		fmt.Printf("pairs extracted:    %s\n", humanize.Comma(int64(m.TotalPairCount)))
		fmt.Printf("pairs counted:      %s\n", humanize.Comma(int64(m.SumPairCount)))
		fmt.Printf("saturated:          %d\n", m.Saturated)
		fmt.Printf("total shard bytes:  %s\n", humanize.Comma(total))
	},
}

func init() {
	RootCmd.AddCommand(indexInfoCmd)
}
