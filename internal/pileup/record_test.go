package pileup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	recs := []*Record{
		{Accession: "3003392", Pos: 4, Ref: 'T', Bases: "..", Line: 1},
		{Accession: "3003392", Pos: 5, Ref: 'C', Bases: "TT", Line: 2},
		{Accession: "3003392", Pos: 4, Ref: 'T', Bases: ",G", Line: 3},
		{Accession: "3000617", Pos: 1, Ref: 'A', Bases: ".", Line: 4},
	}
	idx := NewIndex(recs)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []*Record{recs[0], recs[2]}, idx.Lookup("3003392", 4), "duplicates kept in input order")
	assert.Empty(t, idx.Lookup("3003392", 6))
	assert.Empty(t, idx.Lookup("9999999", 4))
	assert.True(t, idx.HasAccession("3000617"))
	assert.False(t, idx.HasAccession("9999999"))
}

func TestIndex_Nil(t *testing.T) {
	var idx *Index
	assert.Nil(t, idx.Lookup("3003392", 1))
	assert.False(t, idx.HasAccession("3003392"))
	assert.Zero(t, idx.Len())
}

func TestRecordCounts(t *testing.T) {
	r := &Record{Ref: 'a', Bases: ".,Gg"}
	c := r.Counts()
	assert.Equal(t, 2, c.Count('A'))
	assert.Equal(t, 2, c.Count('G'))
}
