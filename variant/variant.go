package variant

import "fmt"

// AlleleKey identifies a distinct allele at a Variant's position: SNP and
// INSERTION alleles are keyed by their literal base string; DELETION
// alleles are keyed by a dash-padded string of the deletion length, so that
// two different-length deletions at the same site are distinct alleles.
type AlleleKey struct {
	Allele string
	Kind   Kind
}

// DeletionAllele returns the dash-padded allele string conventionally used
// to key a deletion of the given length (e.g. length 3 -> "---").
func DeletionAllele(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}

// AlleleEvidence holds parallel per-observation arrays for a single allele;
// all slices have equal length, the allele's read count.
type AlleleEvidence struct {
	ReadNames        []string
	ReadGroups       []string
	Orientations     []bool // true = forward strand
	Qualities        []*int // nil entry = quality not available (e.g. deletion)
	MappingQualities []int

	// seq is the order in which this allele was first observed within its
	// Variant, stamped once by Variant.allele. It exists solely so
	// SortedAlleles can break read-count ties by first appearance.
	seq int
}

// Len returns the allele's read count.
func (e *AlleleEvidence) Len() int { return len(e.ReadNames) }

// Add appends a single observation, keeping all parallel arrays in lock-step.
func (e *AlleleEvidence) Add(readName, readGroup string, forward bool, qual *int, mapq int) {
	e.ReadNames = append(e.ReadNames, readName)
	e.ReadGroups = append(e.ReadGroups, readGroup)
	e.Orientations = append(e.Orientations, forward)
	e.Qualities = append(e.Qualities, qual)
	e.MappingQualities = append(e.MappingQualities, mapq)
}

// MatchesAnyGroup returns the count of this allele's observations whose
// read-group is in groups (used by the is_variable filter, §4.E).
func (e *AlleleEvidence) MatchesAnyGroup(groups map[string]bool) int {
	n := 0
	for _, g := range e.ReadGroups {
		if groups[g] {
			n++
		}
	}
	return n
}

// Variant is an SNV/indel feature attached to a reference at a position.
// It is immutable after construction by Discoverer, except for the annotation
// caches (CapEnzymes, Filters), which are idempotent.
type Variant struct {
	RefName string
	Pos     int64

	Alleles map[AlleleKey]*AlleleEvidence

	// nextSeq stamps each newly created AlleleEvidence with its order of
	// first appearance; see AlleleEvidence.seq.
	nextSeq int

	// sortedCache is populated by SortedAlleles on first call.
	sortedCache []SortedAllele

	// CapEnzymes caches cap_enzymes(); nil means "not computed" as opposed
	// to an empty-but-computed set (see §7 recoverable conditions).
	CapEnzymes map[string]bool

	// Filters is the filter-result cache: filters[name][thresholdKey] ==
	// true means the variant failed that filter.
	Filters map[string]map[string]bool
}

// NewVariant constructs an empty Variant ready to receive alleles.
func NewVariant(refName string, pos int64) *Variant {
	return &Variant{
		RefName: refName,
		Pos:     pos,
		Alleles: make(map[AlleleKey]*AlleleEvidence),
	}
}

// allele returns (creating if absent) the evidence record for key.
func (v *Variant) allele(key AlleleKey) *AlleleEvidence {
	e, ok := v.Alleles[key]
	if !ok {
		e = &AlleleEvidence{seq: v.nextSeq}
		v.nextSeq++
		v.Alleles[key] = e
	}
	return e
}

// Kinds returns the distinct allele kinds present on the variant.
func (v *Variant) Kinds() []Kind {
	seen := make(map[Kind]bool)
	var out []Kind
	for k := range v.Alleles {
		if !seen[k.Kind] {
			seen[k.Kind] = true
			out = append(out, k.Kind)
		}
	}
	return out
}

// AggregateKind returns the fold of the variant's distinct allele kinds.
func (v *Variant) AggregateKind() Kind {
	return AggregateKind(v.Kinds())
}

// SetFilterResult records a filter's result for threshold key tk, unless the
// key is already cached (mappers are idempotent, §4.E).
func (v *Variant) SetFilterResult(name, tk string, failed bool) {
	if v.Filters == nil {
		v.Filters = make(map[string]map[string]bool)
	}
	m, ok := v.Filters[name]
	if !ok {
		m = make(map[string]bool)
		v.Filters[name] = m
	}
	if _, ok := m[tk]; ok {
		return
	}
	m[tk] = failed
}

// FilterResult reports whether name/tk is cached, and if so its value.
func (v *Variant) FilterResult(name, tk string) (failed bool, ok bool) {
	m, exists := v.Filters[name]
	if !exists {
		return false, false
	}
	failed, ok = m[tk]
	return
}

// String renders a short human-readable line: reference, position, and
// allele=count pairs, in the manner of the original's illumina_print.
func (v *Variant) String() string {
	s := fmt.Sprintf("%s:%d", v.RefName, v.Pos)
	for key, ev := range v.Alleles {
		s += fmt.Sprintf(" %s(%s)=%d", key.Allele, key.Kind, ev.Len())
	}
	return s
}
