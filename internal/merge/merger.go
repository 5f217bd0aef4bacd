// Package merge implements the clustering driver that collapses
// near-duplicate SV calls from a position-sorted VCF into consensus records.
package merge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/svmerge/internal/sv"
	"github.com/inodb/svmerge/internal/vcf"
)

// Config holds the merge tunables.
type Config struct {
	MaxDistance       int64      // maximum begin/end distance between mergeable calls
	MaxSizeDifference int64      // maximum size difference between mergeable calls
	Candidate         sv.Options // candidate construction options
}

// DefaultConfig returns the tunables used by the merge command.
func DefaultConfig() Config {
	return Config{
		MaxDistance:       50,
		MaxSizeDifference: 100,
		Candidate:         sv.DefaultOptions(),
	}
}

// Stats summarizes a merge run.
type Stats struct {
	RecordsRead int // raw records consumed from the parser
	Rejected    int // records that did not qualify as SV candidates
	Clusters    int // consensus records written
}

// CandidateWriter receives finalized consensus candidates.
type CandidateWriter interface {
	WriteCandidate(c *sv.Candidate) error
}

// Merger clusters SV candidates with a single sweep over position-sorted
// input. Clusters stay open only while a future record could still merge
// into them (bounded by sv.MergeHorizon), so memory stays proportional to
// local call density.
type Merger struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a merger with the given configuration.
func New(cfg Config) *Merger {
	return &Merger{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and rejection messages.
func (m *Merger) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Run streams records from parser, clusters them, and writes one finalized
// consensus candidate per cluster to out. Input must be sorted by
// chromosome then position; out-of-order input is an error.
//
// Each incoming candidate is tested against the open clusters in their
// arrival order and absorbed by the first that accepts it. The merge
// decision is asymmetric (the cluster's full interval history against the
// newcomer's single representative point), so the cluster is always the
// queried side.
func (m *Merger) Run(parser vcf.VariantParser, out CandidateWriter) (Stats, error) {
	var st Stats
	var open []*sv.Candidate
	var chrom string
	var lastBegin int64

	emit := func(c *sv.Candidate) error {
		c.Finalize()
		st.Clusters++
		return out.WriteCandidate(c)
	}

	for {
		v, err := parser.Next()
		if err != nil {
			return st, fmt.Errorf("read record: %w", err)
		}
		if v == nil {
			break
		}
		st.RecordsRead++

		c, err := sv.NewCandidate(v, m.cfg.Candidate)
		if err != nil {
			re, ok := sv.Reject(err)
			if !ok {
				return st, fmt.Errorf("construct candidate at %s:%d: %w", v.Chrom, v.Pos, err)
			}
			st.Rejected++
			m.logger.Debug("rejected record",
				zap.String("chrom", v.Chrom),
				zap.Int64("pos", v.Pos),
				zap.String("reason", re.Reason.String()))
			continue
		}

		if c.Chrom != chrom {
			for _, cl := range open {
				if err := emit(cl); err != nil {
					return st, err
				}
			}
			open = open[:0]
			chrom = c.Chrom
		} else if c.Begin < lastBegin {
			return st, fmt.Errorf("input not sorted at line %d: %s:%d follows %s:%d",
				parser.LineNumber(), c.Chrom, c.Begin, chrom, lastBegin)
		}
		lastBegin = c.Begin

		// Close clusters the newcomer is already past: no later record can
		// reach them either.
		keep := open[:0]
		for _, cl := range open {
			if c.Begin-cl.MaxBegin > sv.MergeHorizon {
				if err := emit(cl); err != nil {
					return st, err
				}
				continue
			}
			keep = append(keep, cl)
		}
		open = keep

		absorbed := false
		for _, cl := range open {
			if cl.ShouldMerge(c, m.cfg.MaxDistance, m.cfg.MaxSizeDifference) {
				cl.Merge(c)
				absorbed = true
				break
			}
		}
		if !absorbed {
			open = append(open, c)
		}
	}

	for _, cl := range open {
		if err := emit(cl); err != nil {
			return st, err
		}
	}

	m.logger.Info("merge complete",
		zap.Int("records", st.RecordsRead),
		zap.Int("rejected", st.Rejected),
		zap.Int("clusters", st.Clusters))

	return st, nil
}
