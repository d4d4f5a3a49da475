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

	"github.com/spf13/cobra"

	"github.com/salzmanlab/bkc/manifest"
)

var mergeManifestsCmd = &cobra.Command{
	Use:   "merge-manifests",
	Short: "merge several run manifests into one",
	Long: `merge-manifests combines the _bkc.yml manifests from multiple bkc count
invocations that wrote into the same output directory, summing run totals and
merging shard file lists.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			checkError(fmt.Errorf("merge-manifests needs at least two manifest files and one output file"))
		}

		outFile := getFlagString(cmd, "out-file")
		if outFile == "" {
			checkError(fmt.Errorf("flag --out-file is required"))
		}

		ms := make([]manifest.Manifest, 0, len(args))
		for _, f := range args {
			m, err := manifest.FromFile(f)
			checkError(err)
			ms = append(ms, m)
		}

		merged, err := manifest.MergeManifests(ms)
		checkError(err)

		checkError(merged.WriteTo(outFile))
		log.Infof("merged %d manifests into %s", len(ms), outFile)
	},
}

func init() {
	RootCmd.AddCommand(mergeManifestsCmd)
	mergeManifestsCmd.Flags().StringP("out-file", "o", "", "merged manifest output path")
}
