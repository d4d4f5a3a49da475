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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mitchellh/go-homedir"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("bkc")

func init() {
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	formatter := logging.MustStringFormatter(`%{color}[%{level:.4s}]%{color:reset} %{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, formatter))
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

func isStdin(file string) bool {
	return file == "-"
}

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be a positive integer", flag))
	}
	return v
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v < 0 {
		checkError(fmt.Errorf("value of flag --%s should be a non-negative integer", flag))
	}
	return v
}

func getFlagUint64(cmd *cobra.Command, flag string) uint64 {
	v, err := cmd.Flags().GetUint64(flag)
	checkError(err)
	return v
}

// getFileListFromArgsAndFile collects positional file arguments plus any
// files named one-per-line in the flag named by listFlag, mirroring the
// teacher's cmd/util-cli.go helper of the same name.
func getFileListFromArgsAndFile(cmd *cobra.Command, args []string, checkFileFromArgs bool, listFlag string, checkFileFromFile bool) []string {
	files := append([]string(nil), args...)
	if checkFileFromArgs {
		for _, f := range files {
			if isStdin(f) {
				continue
			}
			if _, err := os.Stat(f); err != nil {
				checkError(fmt.Errorf("input file not found: %s", f))
			}
		}
	}

	listFile := getFlagString(cmd, listFlag)
	if listFile == "" {
		return files
	}

	extra, err := readFileList(listFile)
	checkError(err)
	if len(extra) == 0 {
		log.Warningf("no files found in file list: %s", listFile)
		return files
	}
	if checkFileFromFile {
		for _, f := range extra {
			if _, err := os.Stat(f); err != nil {
				checkError(fmt.Errorf("input file not found: %s", f))
			}
		}
	}

	if len(files) == 1 && isStdin(files[0]) {
		return extra
	}
	return append(files, extra...)
}

func readFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// getFlagExpandedPath reads a string flag and expands a leading "~" via
// go-homedir, mirroring the teacher's use of go-homedir for config-file
// paths.
func getFlagExpandedPath(cmd *cobra.Command, flag string) string {
	v := getFlagString(cmd, flag)
	if v == "" || v == "-" {
		return v
	}
	expanded, err := homedir.Expand(v)
	checkError(err)
	return expanded
}
