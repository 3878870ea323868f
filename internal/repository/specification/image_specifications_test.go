package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ayam%", LikePattern(" ayam "))
	assert.Equal(t, `%50\% off\_sale%`, LikePattern("50% off_sale"))
}

func TestOrderColumn(t *testing.T) {
	column, ok := OrderColumn("prompt")
	assert.True(t, ok)
	assert.Equal(t, "prompt", column)

	_, ok = OrderColumn("prompt; DROP TABLE visionimages")
	assert.False(t, ok)
}
