package dataset

import (
	"fmt"
	"iter"
	"slices"
)

// IDPrefix prefixes every package id.
const IDPrefix = "PACK-"

// Record is a single synthetic scan event.
type Record struct {
	ID       string `json:"id"`
	Product  string `json:"product"`
	Material string `json:"material"`
	City     string `json:"city"`
	Recycled bool   `json:"recycled"`
}

// Dataset is an ordered, immutable collection of records indexed by id.
type Dataset struct {
	records []Record
	index   map[string]int
}

// New builds a Dataset from records. The slice is copied. When ids repeat,
// the first record with a given id is the one Find returns.
func New(records ...Record) *Dataset {
	d := &Dataset{
		records: slices.Clone(records),
		index:   make(map[string]int, len(records)),
	}
	for i, r := range d.records {
		if _, ok := d.index[r.ID]; !ok {
			d.index[r.ID] = i
		}
	}
	return d
}

// FormatID renders the 1-indexed sequence number seq as a package id.
func FormatID(seq int) string {
	return fmt.Sprintf("%s%04d", IDPrefix, seq)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of all records in generation order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return []Record{}
	}
	return slices.Clone(d.records)
}

// Find returns the record with the given id.
func (d *Dataset) Find(id string) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	i, ok := d.index[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// All iterates over the records in order without copying the backing slice.
func (d *Dataset) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		if d == nil {
			return
		}
		for i, r := range d.records {
			if !yield(i, r) {
				return
			}
		}
	}
}
