package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = format
	})
	defer SetLogger(nil)

	Logf("hello %d", 1)
	assert.Equal(t, "hello %d", captured)
}

func TestSetLoggerNil(t *testing.T) {
	SetLogger(nil)
	// Must not panic.
	Logf("into the void")
	assert.NotNil(t, Logf)
}

func TestMuteRestores(t *testing.T) {
	var calls int
	SetLogger(func(format string, v ...interface{}) { calls++ })

	restore := Mute()
	Logf("suppressed")
	assert.Equal(t, 0, calls)

	restore()
	Logf("audible")
	assert.Equal(t, 1, calls)

	SetLogger(nil)
}
