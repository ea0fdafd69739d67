package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashStringToUInt64(t *testing.T) {

	a := HashStringToUInt64("game.state")
	b := HashStringToUInt64("game.state")
	c := HashStringToUInt64("game.spawn")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotZero(t, a)
}
