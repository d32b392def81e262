package collection_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartshelf/shelfweb/pkg/collection"
)

func TestMap(t *testing.T) {
	got := collection.Map([]int{1, 2, 3}, func(n int) string { return string(rune('a' + n - 1)) })
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFilterNeverNil(t *testing.T) {
	none := collection.Filter([]int{1, 3}, func(n int) bool { return n%2 == 0 })
	b, _ := json.Marshal(none)
	assert.Equal(t, "[]", string(b))

	assert.Equal(t, []int{2, 4}, collection.Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 }))
}

func TestCount(t *testing.T) {
	assert.Equal(t, 2, collection.Count([]string{"a", "bb", "cc"}, func(s string) bool { return len(s) == 2 }))
	assert.Zero(t, collection.Count(nil, func(string) bool { return true }))
}
