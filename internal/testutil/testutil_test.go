package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateTempDir(t *testing.T) {
	dir := CreateTempDir(t)
	assert.DirExists(t, dir)
}
