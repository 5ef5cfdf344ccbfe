package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.0, Clamp(-0.2, 0, 1))
	assert.Equal(1.0, Clamp(1.7, 0, 1))
	assert.Equal(0.4, Clamp(0.4, 0, 1))
	assert.Equal(15, Clamp(99, 0, 15))
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{65: "f", 60: "c", 62: "d"}
	assert.Equal(t, []int{60, 62, 65}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]int{}))
}
