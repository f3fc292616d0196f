package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []FileItem {
	out := make([]FileItem, n)
	for i := range out {
		out[i] = FileItem{Name: fmt.Sprintf("photo%02d.png", i), Path: fmt.Sprintf("/in/photo%02d.png", i)}
	}

	return out
}

func TestChunk_Sizes(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantSizes []int
	}{
		{name: "empty input", n: 0, size: 3, wantSizes: nil},
		{name: "single short batch", n: 2, size: 3, wantSizes: []int{2}},
		{name: "exact multiple", n: 6, size: 3, wantSizes: []int{3, 3}},
		{name: "trailing short batch", n: 7, size: 3, wantSizes: []int{3, 3, 1}},
		{name: "size one", n: 3, size: 1, wantSizes: []int{1, 1, 1}},
		{name: "size larger than input", n: 4, size: 10, wantSizes: []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Chunk(items(tt.n), tt.size)

			require.Len(t, batches, len(tt.wantSizes))

			for i, b := range batches {
				assert.Len(t, b.Items, tt.wantSizes[i])
				assert.Equal(t, i+1, b.Index)
			}
		})
	}
}

func TestChunk_PreservesOrder(t *testing.T) {
	in := items(7)
	batches := Chunk(in, 3)

	var flattened []FileItem
	for _, b := range batches {
		flattened = append(flattened, b.Items...)
	}

	assert.Equal(t, in, flattened)
}

func TestChunk_InvalidSize(t *testing.T) {
	assert.Nil(t, Chunk(items(3), 0))
	assert.Nil(t, Chunk(items(3), -1))
}

func TestBatch_Tabs(t *testing.T) {
	b := &Batch{Index: 1, Items: items(3)}

	assert.Equal(t, []int{2, 3, 4}, b.Tabs())
	assert.Equal(t, 2, b.Tab(0))
	assert.Equal(t, 4, b.Tab(2))
}

func TestFileItem_Names(t *testing.T) {
	item := FileItem{Name: "photo1.png"}

	assert.Equal(t, "photo1", item.BaseName())
	assert.Equal(t, ".png", item.Ext())

	plain := FileItem{Name: "noext"}

	assert.Equal(t, "noext", plain.BaseName())
	assert.Empty(t, plain.Ext())
}
