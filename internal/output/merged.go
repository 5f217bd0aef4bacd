// Package output writes merged SV records in VCF format.
package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/svmerge/internal/sv"
)

// INFO header lines describing the annotations the merger adds.
const (
	infoNumMerged = `##INFO=<ID=NUM_MERGED_SVS,Number=1,Type=Integer,Description="Number of SV calls merged into this record">`
	infoNumJoined = `##INFO=<ID=NUM_JOINED_SVS,Number=1,Type=Integer,Description="Number of SV calls joined into this record">`
	infoMergedIDs = `##INFO=<ID=MERGED_IDS,Number=.,Type=String,Description="IDs of the SV calls merged into this record">`
	infoStddevPos = `##INFO=<ID=STDDEV_POS,Number=2,Type=Float,Description="Standard deviation of begin and end positions across merged calls">`
)

// MergedWriter writes a merged VCF: the input header is passed through with
// the merger's INFO lines injected before #CHROM, followed by one data line
// per finalized candidate.
type MergedWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
	joinMode    bool
	outputIDs   bool
}

// NewMergedWriter creates a writer over w that re-emits headerLines.
// joinMode and outputIDs must match the candidate construction options so
// the injected INFO lines describe the fields actually written.
func NewMergedWriter(w io.Writer, headerLines []string, joinMode, outputIDs bool) *MergedWriter {
	return &MergedWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
		joinMode:    joinMode,
		outputIDs:   outputIDs,
	}
}

// WriteHeader writes the original VCF header with the merger's INFO lines
// inserted before the #CHROM line.
func (mw *MergedWriter) WriteHeader() error {
	injected := []string{infoStddevPos}
	if mw.joinMode {
		injected = append(injected, infoNumJoined)
	} else {
		injected = append(injected, infoNumMerged)
	}
	if mw.outputIDs {
		injected = append(injected, infoMergedIDs)
	}

	for _, line := range mw.headerLines {
		if strings.HasPrefix(line, "#CHROM") {
			for _, inj := range injected {
				if _, err := mw.w.WriteString(inj + "\n"); err != nil {
					return err
				}
			}
		}
		if _, err := mw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteCandidate writes one finalized candidate as a VCF data line.
func (mw *MergedWriter) WriteCandidate(c *sv.Candidate) error {
	_, err := mw.w.WriteString(c.Line())
	return err
}

// Flush flushes the underlying writer.
func (mw *MergedWriter) Flush() error {
	return mw.w.Flush()
}
