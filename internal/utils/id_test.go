package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementID(t *testing.T) {
	a := ElementID("plot")
	b := ElementID("plot")
	assert.True(t, strings.HasPrefix(a, "plot-"))
	assert.Len(t, a, len("plot-")+36)
	assert.NotEqual(t, a, b)
}
