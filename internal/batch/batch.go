// Package batch groups enumerated input files into fixed-size batches and
// carries the tab bookkeeping for one batch through the upload, idle and
// collect phases.
package batch

import (
	"path/filepath"
	"strings"
)

// FirstTab is the tab index of the first batch tab. Tab 1 is the reserved
// browser tab the run starts from and is never part of a batch.
const FirstTab = 2

// FileItem is one input file, immutable once enumerated.
type FileItem struct {
	Path string
	Name string
}

// BaseName returns the file name without its extension.
func (f FileItem) BaseName() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// Ext returns the file extension, including the leading dot.
func (f FileItem) Ext() string {
	return filepath.Ext(f.Name)
}

// Batch is an ordered group of items processed together through one
// upload, rotate, download and close cycle.
type Batch struct {
	Index int
	Items []FileItem
}

// Tabs returns the tab indexes bound to this batch's items, one per item,
// contiguous starting at FirstTab.
func (b *Batch) Tabs() []int {
	tabs := make([]int, len(b.Items))
	for i := range b.Items {
		tabs[i] = FirstTab + i
	}

	return tabs
}

// Tab returns the tab index bound to the item at position i.
func (b *Batch) Tab(i int) int {
	return FirstTab + i
}

// Chunk splits items into batches of at most size elements, preserving
// order. The last batch may be short. Empty input yields no batches.
func Chunk(items []FileItem, size int) []*Batch {
	if size < 1 || len(items) == 0 {
		return nil
	}

	batches := make([]*Batch, 0, (len(items)+size-1)/size)

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		batches = append(batches, &Batch{
			Index: len(batches) + 1,
			Items: items[start:end],
		})
	}

	return batches
}
