// Package vcf provides VCF file parsing functionality.
package vcf

import "strings"

// Variant represents a single genomic variant record from a VCF file.
type Variant struct {
	Chrom   string            // Chromosome name (e.g., "12", "chr12")
	Pos     int64             // 1-based genomic position
	ID      string            // Variant identifier (e.g., caller-assigned ID)
	Ref     string            // Reference allele
	Alt     string            // Alternate allele(s), comma-separated
	Qual    float64           // Quality score
	Filter  string            // Filter status (PASS or filter name)
	Info    map[string]string // INFO field key-value pairs; flags map to ""
	RawInfo string            // INFO column as read, "." normalized to ""
}

// AltAlleles returns the alternate alleles with "*" placeholder alleles
// removed. The result determines allele cardinality: a record counts as
// biallelic when exactly one allele remains.
func (v *Variant) AltAlleles() []string {
	var out []string
	for _, a := range strings.Split(v.Alt, ",") {
		if a != "*" {
			out = append(out, a)
		}
	}
	return out
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
