package search

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/poiesic/gallerit/core"
)

// Field names a searchable record field.
type Field int

const (
	FieldTitle Field = iota
	FieldClassifications
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldClassifications:
		return "classifications"
	}
	return "unknown"
}

// postings maps each distinct normalized value of one field to the
// positions of the records carrying it.
type postings struct {
	values []string
	lists  []*roaring.Bitmap
	lookup map[string]int
}

func newPostings() *postings {
	return &postings{lookup: make(map[string]int)}
}

func (p *postings) add(value string, position uint32) {
	if value == "" {
		return
	}
	i, ok := p.lookup[value]
	if !ok {
		i = len(p.values)
		p.lookup[value] = i
		p.values = append(p.values, value)
		p.lists = append(p.lists, roaring.New())
	}
	p.lists[i].Add(position)
}

// Index is a throwaway inverted index over a slice of records, built for a
// single query. Positions refer to the slice it was built from.
type Index struct {
	fields map[Field]*postings
	size   int
}

// NewIndex indexes the fields enabled in cfg. Repeated values within a
// record, or across records, are stored once.
func NewIndex(records []core.ImageRecord, cfg core.FieldConfig) *Index {
	ix := &Index{fields: make(map[Field]*postings), size: len(records)}
	if cfg.Title {
		ix.fields[FieldTitle] = newPostings()
	}
	if cfg.Classifications {
		ix.fields[FieldClassifications] = newPostings()
	}

	for i, r := range records {
		pos := uint32(i)
		if p, ok := ix.fields[FieldTitle]; ok {
			p.add(normalize(r.Title), pos)
		}
		if p, ok := ix.fields[FieldClassifications]; ok {
			for _, label := range r.Classifications {
				p.add(normalize(label), pos)
			}
		}
	}
	return ix
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return ix.size
}

// Terms returns the number of distinct values indexed for field.
func (ix *Index) Terms(field Field) int {
	if p, ok := ix.fields[field]; ok {
		return len(p.values)
	}
	return 0
}

// Hit is one matching record position with its best score.
type Hit struct {
	Position int
	Score    float64
	Field    Field
}

// Match scores every distinct value against query and returns one hit per
// matching record, best score first. Equal scores keep record order.
func (ix *Index) Match(query string, threshold float64) []Hit {
	q := normalize(query)
	if q == "" || len(ix.fields) == 0 {
		return []Hit{}
	}
	m := newMatcher(q, threshold)

	best := make(map[uint32]Hit)
	for _, field := range []Field{FieldTitle, FieldClassifications} {
		p, ok := ix.fields[field]
		if !ok {
			continue
		}
		for i, value := range p.values {
			score, ok := m.score(value)
			if !ok {
				continue
			}
			p.lists[i].Iterate(func(pos uint32) bool {
				if h, seen := best[pos]; !seen || score < h.Score {
					best[pos] = Hit{Position: int(pos), Score: score, Field: field}
				}
				return true
			})
		}
	}

	hits := make([]Hit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return a.Position - b.Position
	})
	return hits
}
