package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday(t *testing.T) {
	c := NewFixed(time.Date(2024, 1, 31, 18, 30, 0, 0, time.UTC))

	assert.Equal(t, "2024-01-31", Today(c, nil))

	seoul := time.FixedZone("KST", 9*60*60)
	assert.Equal(t, "2024-02-01", Today(c, seoul))
}
