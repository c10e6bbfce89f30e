package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-09-30")
	assert.Nil(t, err)
	assert.Equal(t, 2025, d.Year)
	assert.Equal(t, time.September, d.Month)
	assert.Equal(t, 30, d.Day)
	assert.Equal(t, "2025-09-30", d.String())

	// slash form not supported
	_, err = Parse("2025/09/30")
	assert.NotNil(t, err)
}

func TestOrdering(t *testing.T) {
	a := New(2025, time.September, 29)
	b := New(2025, time.September, 30)

	assert.True(t, b.After(a))
	assert.False(t, a.After(b))
	assert.True(t, a.Equal(a))
}

func TestScan(t *testing.T) {
	var d Date
	assert.Nil(t, d.Scan(time.Date(2020, 8, 31, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2020-08-31", d.String())

	var fromText Date
	assert.Nil(t, fromText.Scan([]byte("2020-08-24")))
	assert.Equal(t, "2020-08-24", fromText.String())

	var empty Date
	assert.Nil(t, empty.Scan(nil))
	assert.True(t, empty.IsZero())
}
