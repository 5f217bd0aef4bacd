package sv

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/svmerge/internal/stats"
	"github.com/inodb/svmerge/internal/vcf"
)

// MinSVSize is the minimum length in base pairs for a variant to qualify as
// structural rather than a small indel.
const MinSVSize = 50

// Options configures candidate construction.
type Options struct {
	CheckType        bool // validate the normalized tag against the canonical type set
	JoinMode         bool // label output NUM_JOINED_SVS and keep prior merge counts in place
	OutputIDs        bool // track member record IDs for MERGED_IDS output
	IgnoreBreakends  bool // drop BND/TRA-tagged records before normalization
	IgnoreInversions bool // drop INV-tagged records before normalization
	FoldInversion    bool // normalize INV to INS (historical merge policy)
}

// DefaultOptions returns the construction options used by the merge command.
func DefaultOptions() Options {
	return Options{
		CheckType:     true,
		FoldInversion: true,
	}
}

// RejectReason identifies why a record did not qualify as an SV candidate.
type RejectReason int

const (
	RejectMultiAllelic RejectReason = iota
	RejectSmallIndel
	RejectExcludedType
	RejectDeletionTooShort
	RejectInsertionTooShort
	RejectNotStructural
)

// String returns a short description of the rejection reason.
func (r RejectReason) String() string {
	switch r {
	case RejectMultiAllelic:
		return "more than one alternate allele"
	case RejectSmallIndel:
		return "allele length difference below SV threshold"
	case RejectExcludedType:
		return "excluded SV type"
	case RejectDeletionTooShort:
		return "deletion shorter than SV threshold"
	case RejectInsertionTooShort:
		return "insertion shorter than SV threshold without sequence evidence"
	case RejectNotStructural:
		return "record is not a structural variant"
	}
	return "unknown"
}

// RejectError is the soft-rejection result of candidate construction: the
// record is well-formed but does not qualify as a mergeable SV. The driver
// discards the record and moves on; it is never a fault.
type RejectError struct {
	Reason RejectReason
}

func (e *RejectError) Error() string {
	return "not a qualifying structural variant: " + e.Reason.String()
}

// Reject reports whether err is a construction-time soft rejection.
func Reject(err error) (*RejectError, bool) {
	re, ok := err.(*RejectError)
	return re, ok
}

// Interval is a half-open [Begin,End) genomic interval, used as the
// composite key for merge-membership testing and consensus selection.
type Interval struct {
	Begin, End int64
}

// Candidate is a structural variant call under merging. It is built from a
// single VCF record and absorbs other candidates via Merge, keeping the full
// per-member history needed for consensus selection and STDDEV_POS
// reporting.
//
// A Candidate and its history slices are exclusively owned: Merge mutates
// the receiver in place and consumes its argument. Callers that parallelize
// clustering must confine each candidate to one worker.
type Candidate struct {
	Chrom string
	Begin int64 // consensus begin, meaningful after Finalize
	End   int64 // consensus end, half-open [Begin,End)
	Type  Type  // immutable after construction

	// Extremes across all absorbed members, for cheap merge pre-filtering.
	MinBegin int64
	MaxBegin int64

	// Parallel per-member history, arrival order preserved.
	Begins []int64
	Ends   []int64
	Infos  []string
	Refs   []string
	Alts   []string
	IDs    []string // populated only when OutputIDs is set

	// Distinct (begin,end) pairs seen, for O(distinct) merge testing.
	uniqueIntervals map[Interval]struct{}

	// Prior NUM_MERGED_SVS carried in from an upstream merge pass, -1 when
	// absent. Keeps re-merged counts cumulative instead of resetting.
	oldMergedCount int

	outputIDs bool
	joinMode  bool
}

// NewCandidate builds an SV candidate from a parsed VCF record. It returns a
// *RejectError when the record does not qualify (wrong allele cardinality,
// sub-threshold size, excluded type); the record should then be discarded.
// A normalized type tag outside the canonical set while CheckType is set is
// a programming-contract violation and panics.
func NewCandidate(v *vcf.Variant, opts Options) (*Candidate, error) {
	begin := v.Pos
	end := begin
	ref := v.Ref
	alt := v.Alt
	rawInfo := v.RawInfo
	info := maps.Clone(v.Info)
	if info == nil {
		info = make(map[string]string)
	}

	tag, hasTag := info["SVTYPE"]
	if !hasTag {
		// No explicit type tag: infer from allele lengths. Only biallelic
		// records qualify ("*" placeholder alleles do not count).
		alts := v.AltAlleles()
		if len(alts) != 1 {
			return nil, &RejectError{Reason: RejectMultiAllelic}
		}
		allele := alts[0]

		switch {
		case len(ref) >= len(allele)+MinSVSize:
			tag = "DEL"
		case len(allele) >= len(ref)+MinSVSize:
			tag = "INS"
		default:
			return nil, &RejectError{Reason: RejectSmallIndel}
		}

		// Record the inference in the carried-forward annotation so the
		// merged output is self-describing.
		alt = allele
		signedLen := len(allele) - len(ref)
		if rawInfo != "" {
			rawInfo += ";"
		}
		rawInfo += fmt.Sprintf("SVTYPE=%s;SVLEN=%d", tag, signedLen)
		info["SVTYPE"] = tag
		info["SVLEN"] = strconv.Itoa(signedLen)
		if tag == "DEL" {
			info["SVSIZE"] = strconv.Itoa(-signedLen)
		} else {
			info["SVSIZE"] = strconv.Itoa(signedLen)
		}
	} else {
		// Exclusion filters apply to the caller's original tag, before
		// aliases are folded.
		if opts.IgnoreBreakends && (tag == "BND" || tag == "TRA") {
			return nil, &RejectError{Reason: RejectExcludedType}
		}
		if opts.IgnoreInversions && tag == "INV" {
			return nil, &RejectError{Reason: RejectExcludedType}
		}

		tag = normalizeTag(tag, opts.FoldInversion)
		info["SVTYPE"] = tag
	}

	// A prior merge pass may have annotated this record already. Capture its
	// count so re-merging accumulates, and strip the stale keys from the
	// carried-forward annotation before re-annotation.
	oldMergedCount := -1
	if !opts.JoinMode {
		if s, ok := info["NUM_MERGED_SVS"]; ok {
			if n, err := strconv.Atoi(s); err == nil {
				oldMergedCount = n
			}
			rawInfo = stripInfoKeys(rawInfo, "NUM_MERGED_SVS")
		}
	}
	if _, ok := info["STDDEV_POS"]; ok {
		rawInfo = stripInfoKeys(rawInfo, "STDDEV_POS")
	}

	switch tag {
	case "DEL":
		if n, ok := infoInt(info, "END"); ok {
			end = n
		} else if n, ok := infoInt(info, "SVSIZE"); ok {
			end = begin + abs64(n)
		} else if n, ok := infoInt(info, "SVLEN"); ok {
			end = begin + abs64(n)
		}
		if end-begin < MinSVSize {
			return nil, &RejectError{Reason: RejectDeletionTooShort}
		}
	case "INS":
		// Insertions keep end == begin; length only gates qualification.
		length, ok := infoInt(info, "SVLEN")
		if !ok {
			length, ok = infoInt(info, "SVSIZE")
		}
		if !ok {
			length = -1
		}
		if length < MinSVSize && !hasInsertedSequence(info) {
			return nil, &RejectError{Reason: RejectInsertionTooShort}
		}
	}

	typ := TypeUnknown
	if opts.CheckType {
		t, ok := TypeFromTag(tag)
		if !ok {
			panic(fmt.Sprintf("sv: type tag %q survived normalization but is not canonical", tag))
		}
		if t == TypeNotSV {
			return nil, &RejectError{Reason: RejectNotStructural}
		}
		typ = t
	}

	c := &Candidate{
		Chrom:           v.Chrom,
		Begin:           begin,
		End:             end,
		Type:            typ,
		MinBegin:        begin,
		MaxBegin:        begin,
		Begins:          []int64{begin},
		Ends:            []int64{end},
		Infos:           []string{rawInfo},
		Refs:            []string{ref},
		Alts:            []string{alt},
		uniqueIntervals: map[Interval]struct{}{{Begin: begin, End: end}: {}},
		oldMergedCount:  oldMergedCount,
		outputIDs:       opts.OutputIDs,
		joinMode:        opts.JoinMode,
	}
	if opts.OutputIDs {
		c.IDs = []string{v.ID}
	}
	return c, nil
}

// NumMembers returns the number of raw records absorbed into the candidate.
func (c *Candidate) NumMembers() int {
	return len(c.Begins)
}

// Finalize selects the consensus (begin,end) for the candidate: the most
// frequent pair among the absorbed members, ties broken by earliest arrival.
// The member slices at index 0 are repointed to the lowest index carrying
// the chosen pair, so the serialized alleles and annotation come from an
// actually observed record. Runs once, after all merges.
func (c *Candidate) Finalize() {
	pairs := make([]Interval, len(c.Begins))
	for i := range c.Begins {
		pairs[i] = Interval{Begin: c.Begins[i], End: c.Ends[i]}
	}

	best := stats.MostCommon(pairs)
	c.Begin, c.End = best.Begin, best.End

	for i, p := range pairs {
		if p == best {
			if i > 0 {
				c.Infos[0] = c.Infos[i]
				c.Refs[0] = c.Refs[i]
				c.Alts[0] = c.Alts[i]
			}
			return
		}
	}
}

// Line serializes the candidate as one newline-terminated 8-column VCF data
// line. The annotation gains MERGED_IDS (when id-tracking is on), a
// NUM_MERGED_SVS or NUM_JOINED_SVS count, and STDDEV_POS over the member
// begin/end positions. Call after Finalize.
func (c *Candidate) Line() string {
	info := c.Infos[0]
	if len(info) > 0 {
		info += ";"
	}

	numText := "MERGED"
	if c.joinMode {
		numText = "JOINED"
	}

	numSVs := len(c.Begins)
	if c.oldMergedCount > 0 {
		numSVs += c.oldMergedCount - 1
	}

	var b strings.Builder
	b.WriteString(info)
	if c.outputIDs {
		b.WriteString("MERGED_IDS=")
		b.WriteString(strings.Join(c.IDs, ","))
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "NUM_%s_SVS=%d;STDDEV_POS=%.2f,%.2f",
		numText, numSVs, stats.Stddev(c.Begins), stats.Stddev(c.Ends))

	return fmt.Sprintf("%s\t%d\t.\t%s\t%s\t0\t.\t%s\n",
		c.Chrom, c.Begin, c.Refs[0], c.Alts[0], b.String())
}

// stripInfoKeys removes the named keys from a raw annotation string,
// preserving the order of the remaining fields.
func stripInfoKeys(raw string, keys ...string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for rest := raw; rest != ""; {
		semi := strings.IndexByte(rest, ';')
		var field string
		if semi >= 0 {
			field = rest[:semi]
			rest = rest[semi+1:]
		} else {
			field = rest
			rest = ""
		}
		name := field
		if eq := strings.IndexByte(field, '='); eq >= 0 {
			name = field[:eq]
		}
		if slices.Contains(keys, name) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(field)
	}
	return b.String()
}

// hasInsertedSequence reports whether the record carries direct sequence
// evidence for an insertion.
func hasInsertedSequence(info map[string]string) bool {
	for _, key := range []string{"SVINSSEQ", "LEFT_SVINSSEQ", "RIGHT_SVINSSEQ"} {
		if _, ok := info[key]; ok {
			return true
		}
	}
	return false
}

// infoInt parses an annotation value as an integer at point of use.
func infoInt(info map[string]string, key string) (int64, bool) {
	s, ok := info[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
