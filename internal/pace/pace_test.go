package pace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUniform_WithinBounds(t *testing.T) {
	s := Uniform(3*time.Second, 7*time.Second)

	for i := 0; i < 1000; i++ {
		d := s()
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 7*time.Second)
	}
}

func TestUniform_DegenerateRange(t *testing.T) {
	s := Uniform(5*time.Second, 5*time.Second)

	assert.Equal(t, 5*time.Second, s())
}

func TestUniform_SwapsInvertedBounds(t *testing.T) {
	s := Uniform(7*time.Second, 3*time.Second)

	for i := 0; i < 100; i++ {
		d := s()
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 7*time.Second)
	}
}

func TestFixed(t *testing.T) {
	s := Fixed(42 * time.Millisecond)

	assert.Equal(t, 42*time.Millisecond, s())
	assert.Equal(t, 42*time.Millisecond, s())
}
