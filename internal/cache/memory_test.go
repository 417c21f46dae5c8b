package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeen_First(t *testing.T) {
	s := NewSeen(0)

	assert.True(t, s.First("a"))
	assert.False(t, s.First("a"))
	assert.True(t, s.First("b"))
	assert.Equal(t, 2, s.cache.ItemCount())
}

func TestSeen_Expiry(t *testing.T) {
	s := NewSeen(20 * time.Millisecond)

	assert.True(t, s.First("label"))
	assert.False(t, s.First("label"))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, s.First("label"), "key should be reported again after the window")
}

func TestKey(t *testing.T) {
	k1 := Key("pathogenicity", "foo")
	k2 := Key("pathogenicity", "foo")
	k3 := Key("attribute", "foo")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "clinvar-tsv:v1:pathogenicity:")
	assert.Len(t, Key("x", string(make([]byte, 10000))), len(Key("x", "")))
}
