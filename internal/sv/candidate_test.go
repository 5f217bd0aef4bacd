package sv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/svmerge/internal/vcf"
)

// testVariant builds a parsed VCF record the way the parser would.
func testVariant(chrom string, pos int64, id, ref, alt, info string) *vcf.Variant {
	raw := info
	if raw == "." {
		raw = ""
	}
	return &vcf.Variant{
		Chrom:   chrom,
		Pos:     pos,
		ID:      id,
		Ref:     ref,
		Alt:     alt,
		Filter:  "PASS",
		Info:    vcf.ParseInfo(info),
		RawInfo: raw,
	}
}

func TestNewCandidate_ExplicitDeletion(t *testing.T) {
	v := testVariant("1", 10000, "del1", "N", "<DEL>", "SVTYPE=DEL;END=10250;SVLEN=-250")

	c, err := NewCandidate(v, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, TypeDeletion, c.Type)
	assert.Equal(t, "1", c.Chrom)
	assert.Equal(t, int64(10000), c.Begin)
	assert.Equal(t, int64(10250), c.End)
	assert.Equal(t, []int64{10000}, c.Begins)
	assert.Equal(t, []int64{10250}, c.Ends)
	assert.Equal(t, int64(10000), c.MinBegin)
	assert.Equal(t, int64(10000), c.MaxBegin)
	assert.Contains(t, c.uniqueIntervals, Interval{Begin: 10000, End: 10250})
}

func TestNewCandidate_DeletionEndFromSize(t *testing.T) {
	// Without END, the end derives from the unsigned size, then the signed
	// length.
	c, err := NewCandidate(testVariant("1", 100, "d", "N", "<DEL>", "SVTYPE=DEL;SVSIZE=200"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(300), c.End)

	c, err = NewCandidate(testVariant("1", 100, "d", "N", "<DEL>", "SVTYPE=DEL;SVLEN=-200"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(300), c.End)
}

func TestNewCandidate_InferredDeletion(t *testing.T) {
	ref := strings.Repeat("T", 60)
	v := testVariant("2", 7000, "d", ref, "T", ".")

	c, err := NewCandidate(v, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, TypeDeletion, c.Type)
	assert.GreaterOrEqual(t, c.End-c.Begin, int64(MinSVSize))
	assert.Equal(t, int64(7059), c.End)
	// The inference is written back into the carried annotation.
	assert.Equal(t, "SVTYPE=DEL;SVLEN=-59", c.Infos[0])
}

func TestNewCandidate_InferredInsertion(t *testing.T) {
	alt := strings.Repeat("A", 60)
	v := testVariant("2", 7000, "i", "A", alt, ".")

	c, err := NewCandidate(v, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, TypeInsertion, c.Type)
	// Insertions keep end == begin.
	assert.Equal(t, c.Begin, c.End)
	assert.Equal(t, "SVTYPE=INS;SVLEN=59", c.Infos[0])
}

func TestNewCandidate_InferredWithPlaceholderAllele(t *testing.T) {
	ref := strings.Repeat("T", 60)
	v := testVariant("2", 7000, "d", ref, "T,*", ".")

	c, err := NewCandidate(v, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TypeDeletion, c.Type)
	assert.Equal(t, "T", c.Alts[0])
}

func TestNewCandidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		v      *vcf.Variant
		opts   Options
		reason RejectReason
	}{
		{
			"multi-allelic",
			testVariant("1", 100, "m", strings.Repeat("T", 60), "T,A", "."),
			DefaultOptions(),
			RejectMultiAllelic,
		},
		{
			"small indel",
			testVariant("1", 100, "s", "TTTT", "T", "."),
			DefaultOptions(),
			RejectSmallIndel,
		},
		{
			"deletion below threshold",
			testVariant("1", 100, "d", "N", "<DEL>", "SVTYPE=DEL;END=130"),
			DefaultOptions(),
			RejectDeletionTooShort,
		},
		{
			"insertion below threshold",
			testVariant("1", 100, "i", "N", "<INS>", "SVTYPE=INS;SVLEN=20"),
			DefaultOptions(),
			RejectInsertionTooShort,
		},
		{
			"insertion without length",
			testVariant("1", 100, "i", "N", "<INS>", "SVTYPE=INS"),
			DefaultOptions(),
			RejectInsertionTooShort,
		},
		{
			"breakend excluded",
			testVariant("1", 100, "b", "N", "N[2:400[", "SVTYPE=BND"),
			Options{CheckType: true, IgnoreBreakends: true},
			RejectExcludedType,
		},
		{
			"translocation excluded with breakends",
			testVariant("1", 100, "b", "N", "<TRA>", "SVTYPE=TRA"),
			Options{CheckType: true, IgnoreBreakends: true},
			RejectExcludedType,
		},
		{
			"inversion excluded",
			testVariant("1", 100, "v", "N", "<INV>", "SVTYPE=INV;END=900"),
			Options{CheckType: true, IgnoreInversions: true},
			RejectExcludedType,
		},
		{
			"explicit not-sv tag",
			testVariant("1", 100, "n", "N", "<X>", "SVTYPE=NOT_SV"),
			DefaultOptions(),
			RejectNotStructural,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCandidate(tt.v, tt.opts)
			require.Error(t, err)
			assert.Nil(t, c)

			re, ok := Reject(err)
			require.True(t, ok, "expected a soft rejection, got %v", err)
			assert.Equal(t, tt.reason, re.Reason)
		})
	}
}

func TestNewCandidate_InsertionWithSequenceEvidence(t *testing.T) {
	// A short or unknown length is acceptable when inserted sequence
	// evidence is present.
	for _, key := range []string{"SVINSSEQ=ACGT", "LEFT_SVINSSEQ=ACGT", "RIGHT_SVINSSEQ=ACGT"} {
		v := testVariant("1", 100, "i", "N", "<INS>", "SVTYPE=INS;"+key)
		c, err := NewCandidate(v, DefaultOptions())
		require.NoError(t, err, "key %s", key)
		assert.Equal(t, TypeInsertion, c.Type)
	}
}

func TestNewCandidate_TypeAliases(t *testing.T) {
	tests := []struct {
		tag  string
		want Type
	}{
		{"DEL_ALU", TypeDeletion},
		{"DEL_LINE1", TypeDeletion},
		{"ALU", TypeInsertion},
		{"LINE1", TypeInsertion},
		{"SVA", TypeInsertion},
		{"DUP", TypeInsertion},
		{"CNV", TypeInsertion},
		{"INVDUP", TypeInsertion},
		{"INV", TypeInsertion}, // folded under the default policy
		{"TRA", TypeBreakend},
		{"BND", TypeBreakend},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			v := testVariant("1", 100, "a", "N", "<SV>", "SVTYPE="+tt.tag+";END=900;SVLEN=800;SVINSSEQ=N")
			c, err := NewCandidate(v, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Type)
		})
	}
}

func TestNewCandidate_InversionPolicy(t *testing.T) {
	v := testVariant("1", 100, "v", "N", "<INV>", "SVTYPE=INV;END=900")

	opts := DefaultOptions()
	opts.FoldInversion = false
	c, err := NewCandidate(v, opts)
	require.NoError(t, err)
	assert.Equal(t, TypeInversion, c.Type)

	c, err = NewCandidate(v, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TypeInsertion, c.Type)
}

func TestNewCandidate_UnknownTagPanics(t *testing.T) {
	v := testVariant("1", 100, "x", "N", "<X>", "SVTYPE=WEIRD")
	assert.Panics(t, func() {
		NewCandidate(v, DefaultOptions()) //nolint:errcheck
	})
}

func TestNewCandidate_NoTypeValidation(t *testing.T) {
	v := testVariant("1", 100, "x", "N", "<X>", "SVTYPE=WEIRD")
	c, err := NewCandidate(v, Options{})
	require.NoError(t, err)
	assert.Equal(t, TypeUnknown, c.Type)
}

func TestNewCandidate_StripsPriorMergeKeys(t *testing.T) {
	v := testVariant("1", 10000, "d", "N", "<DEL>",
		"SVTYPE=DEL;NUM_MERGED_SVS=3;STDDEV_POS=1.50,2.00;END=10250")

	c, err := NewCandidate(v, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "SVTYPE=DEL;END=10250", c.Infos[0])
	assert.Equal(t, 3, c.oldMergedCount)
}

func TestNewCandidate_JoinModeKeepsPriorCount(t *testing.T) {
	v := testVariant("1", 10000, "d", "N", "<DEL>",
		"SVTYPE=DEL;NUM_MERGED_SVS=3;END=10250")

	opts := DefaultOptions()
	opts.JoinMode = true
	c, err := NewCandidate(v, opts)
	require.NoError(t, err)

	// Join mode does not consume the upstream merge count.
	assert.Contains(t, c.Infos[0], "NUM_MERGED_SVS=3")
	assert.Equal(t, -1, c.oldMergedCount)
}

func TestNewCandidate_TracksIDs(t *testing.T) {
	v := testVariant("1", 10000, "MantaDEL:1", "N", "<DEL>", "SVTYPE=DEL;END=10250")

	opts := DefaultOptions()
	opts.OutputIDs = true
	c, err := NewCandidate(v, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"MantaDEL:1"}, c.IDs)
}

func TestStripInfoKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		keys []string
		want string
	}{
		{"middle", "A=1;NUM_MERGED_SVS=3;B=2", []string{"NUM_MERGED_SVS"}, "A=1;B=2"},
		{"trailing", "A=1;STDDEV_POS=0.00,0.00", []string{"STDDEV_POS"}, "A=1"},
		{"leading", "STDDEV_POS=1;A=1", []string{"STDDEV_POS"}, "A=1"},
		{"flag token", "IMPRECISE;A=1", []string{"IMPRECISE"}, "A=1"},
		{"absent", "A=1;B=2", []string{"C"}, "A=1;B=2"},
		{"empty", "", []string{"A"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripInfoKeys(tt.raw, tt.keys...))
		})
	}
}
