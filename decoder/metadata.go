package decoder

import (
	"fmt"
	"io"
	"strings"

	"github.com/nanolog/nanolog"
)

// PrintMetadataContaining renders the id | filename | line | format-string
// table for every call site whose format string contains search, matching
// LogDecompressor.cc's printLogMetadataContainingSubstring — the "-grep"
// path of the decoder CLI.
func PrintMetadataContaining(w io.Writer, gc nanolog.GeneratedCode, search string) {
	fmt.Fprintf(w, "%4s | %-20s | %-4s | %s\n", "id", "filename", "line", "format string")
	for id := 0; id < gc.NumLogIds(); id++ {
		m := gc.Metadata(id)
		if strings.Contains(m.FmtString, search) {
			fmt.Fprintf(w, "%4d | %-20s | %-4d | %s\n", id, m.FileName, m.LineNumber, m.FmtString)
		}
	}
}
