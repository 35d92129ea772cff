package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderExpired(t *testing.T) {
	o := Order{CreatedAt: 100, Duration: 50}

	assert.False(t, o.Expired(100), "freshly created")
	assert.False(t, o.Expired(149), "inside the window")
	assert.False(t, o.Expired(150), "the boundary tick is still live")
	assert.True(t, o.Expired(151), "one past the boundary")
}
