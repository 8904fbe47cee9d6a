package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Keys(t *testing.T) {
	assert.Equal(t, "status:latest:7", SnapshotKey(7))
	assert.Equal(t, "metrics:keystrokes:7:2026-09-01", KeystrokesKey(7, "2026-09-01"))
	assert.Equal(t, "metrics:activeMs:7:2026-09-01", ActiveMsKey(7, "2026-09-01"))
}

func TestIdentity_String(t *testing.T) {
	assert.Equal(t, "42", Identity(42).String())
}
