package pileup

// Record is one line of mpileup output.
type Record struct {
	Accession string // reference sequence name (the ARO accession for CARD references)
	Pos       int    // 1-based position
	Ref       byte   // reference base, uppercased
	Depth     int    // number of reads covering the position
	Bases     string // read base string
	Quals     string // base qualities, empty if absent
	Line      int    // source line number
}

// Counts decodes the record's read base string.
func (r *Record) Counts() BaseCounts {
	return ParseReadBases(r.Ref, r.Bases)
}

// Index groups records by accession and position.
type Index struct {
	byAcc map[string]map[int][]*Record
	n     int
}

// NewIndex builds an index over recs. Records sharing a coordinate are
// kept in input order.
func NewIndex(recs []*Record) *Index {
	idx := &Index{byAcc: make(map[string]map[int][]*Record)}
	for _, r := range recs {
		idx.Add(r)
	}
	return idx
}

// Add inserts a record.
func (idx *Index) Add(r *Record) {
	byPos, ok := idx.byAcc[r.Accession]
	if !ok {
		byPos = make(map[int][]*Record)
		idx.byAcc[r.Accession] = byPos
	}
	byPos[r.Pos] = append(byPos[r.Pos], r)
	idx.n++
}

// Lookup returns the records at accession:pos.
func (idx *Index) Lookup(accession string, pos int) []*Record {
	if idx == nil {
		return nil
	}
	return idx.byAcc[accession][pos]
}

// HasAccession reports whether any record was seen for accession.
func (idx *Index) HasAccession(accession string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.byAcc[accession]
	return ok
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.n
}
