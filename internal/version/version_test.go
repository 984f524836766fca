package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	prev := Version
	defer func() { Version = prev }()

	Version = "1.2.3"
	assert.Equal(t, "faultskin 1.2.3 (commit unknown, built unknown)", String())
}
