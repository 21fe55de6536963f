// Command nanolog-decode is the offline counterpart to a nanolog producer
// process: it decompresses a log file back into human-readable text. It
// mirrors original_source/runtime/LogDecompressor.cc's argument handling
// and exit codes, substituting Go's os.Exit for the original's exit().
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nanolog/nanolog"
	"github.com/nanolog/nanolog/decoder"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		fmt.Printf("Decompresses log files produced by the nanolog runtime\n" +
			"into a human readable format.\n\n")
		fmt.Printf("\tUsage: %s <logFile> [# messages to print]\n", args[0])
		fmt.Printf("\tUsage: %s -grep <substring> <logFile>\n", args[0])
		return 1
	}

	if args[1] == "-grep" {
		if len(args) < 4 {
			fmt.Printf("\tUsage: %s -grep <substring> <logFile>\n", args[0])
			return 1
		}
		return runGrep(args[2], args[3])
	}

	logFile := args[1]
	msgsToPrint := 0
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Printf("Invalid # of message to print, please enter a number: %s\n", args[2])
			return -1
		}
		if n < 0 {
			fmt.Printf("# of messages to print must be positive: %s\n", args[2])
			return -1
		}
		msgsToPrint = n
	}

	gc := sampleTable()

	d, ok := decoder.Open(logFile, gc)
	if !ok {
		fmt.Printf("Unable to open file %s\n", logFile)
		return -1
	}
	defer d.Close()

	_, err := d.DecompressUnordered(os.Stdout, msgsToPrint)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runGrep(substring, logFile string) int {
	_ = logFile // the metadata table is static; logFile is accepted for symmetry with LogDecompressor.cc's flag but not reopened.
	decoder.PrintMetadataContaining(decoder.StdoutWriter(), sampleTable(), substring)
	return 0
}

// sampleTable stands in for the metadata table a real deployment's build
// step would link in; see sample_generated.go. It must cover every
// format id a producer might have logged, so it is sized generously
// rather than left empty.
func sampleTable() nanolog.GeneratedCode {
	return nanolog.DefaultSampleGeneratedCode(256)
}
