// Package sv models structural variant (SV) candidates and the merge
// primitives used to collapse near-duplicate calls into consensus records.
package sv

// Type is the canonical structural variant type set. Caller-specific
// vocabularies (DEL_ALU, TRA, INVDUP, ...) are folded into it during
// candidate construction.
type Type int

const (
	TypeUnknown Type = iota
	TypeBreakend
	TypeDeletion
	TypeInsertion
	TypeInversion
	TypeNotSV
)

// String returns the canonical VCF tag for the type.
func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "UNK"
	case TypeBreakend:
		return "BND"
	case TypeDeletion:
		return "DEL"
	case TypeInsertion:
		return "INS"
	case TypeInversion:
		return "INV"
	case TypeNotSV:
		return "NOT_SV"
	}
	return "UNK"
}

// TypeFromTag maps a canonical tag to its Type. The second return value is
// false for tags outside the canonical set.
func TypeFromTag(tag string) (Type, bool) {
	switch tag {
	case "UNK":
		return TypeUnknown, true
	case "BND":
		return TypeBreakend, true
	case "DEL":
		return TypeDeletion, true
	case "INS":
		return TypeInsertion, true
	case "INV":
		return TypeInversion, true
	case "NOT_SV":
		return TypeNotSV, true
	}
	return TypeUnknown, false
}

// normalizeTag canonicalizes caller-specific SVTYPE aliases. Mobile element
// deletions fold into DEL; mobile element insertions, duplications, and copy
// number variants fold into INS; translocations fold into BND. Inversions
// fold into INS only when foldInversion is set (callers disagree on whether
// an inversion is best merged as an insertion-like event, so the policy is
// explicit). Unrecognized tags pass through unchanged.
func normalizeTag(tag string, foldInversion bool) string {
	switch tag {
	case "DEL_ALU", "DEL_LINE1":
		return "DEL"
	case "ALU", "LINE1", "SVA", "DUP", "CNV", "INVDUP":
		return "INS"
	case "INV":
		if foldInversion {
			return "INS"
		}
		return tag
	case "TRA":
		return "BND"
	}
	return tag
}
