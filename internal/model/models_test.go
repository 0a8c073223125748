// internal/model/models_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	t.Run("pages partition the collection exactly in order", func(t *testing.T) {
		var seen []int
		for p := 0; p < 3; p++ {
			page := NewPage(items, p, 20)
			assert.LessOrEqual(t, len(page.Items), page.Size)
			assert.Equal(t, int64(45), page.TotalElements)
			seen = append(seen, page.Items...)
		}
		assert.Equal(t, items, seen)
	})

	t.Run("last partial page holds the remainder", func(t *testing.T) {
		page := NewPage(items, 2, 20)
		assert.Len(t, page.Items, 5)
		assert.Equal(t, 40, page.Items[0])
		assert.Equal(t, 44, page.Items[4])
	})

	t.Run("page beyond the data is empty with accurate total", func(t *testing.T) {
		page := NewPage(items, 3, 20)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(45), page.TotalElements)
	})

	t.Run("negative page is empty with accurate total", func(t *testing.T) {
		page := NewPage(items, -1, 20)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(45), page.TotalElements)
	})

	t.Run("short collection fits a single page", func(t *testing.T) {
		page := NewPage([]string{"a", "b", "c"}, 0, 20)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, int64(3), page.TotalElements)

		next := NewPage([]string{"a", "b", "c"}, 1, 20)
		assert.Empty(t, next.Items)
		assert.Equal(t, int64(3), next.TotalElements)
	})

	t.Run("empty collection yields an empty first page", func(t *testing.T) {
		page := NewPage([]int{}, 0, 20)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(0), page.TotalElements)
	})
}
