package logging

import (
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, log.DebugLevel, levelFromString("debug"))
	assert.Equal(t, log.WarnLevel, levelFromString(" WARN "))
	assert.Equal(t, log.ErrorLevel, levelFromString("error"))
	assert.Equal(t, log.InfoLevel, levelFromString("chatty"))
	assert.Equal(t, log.InfoLevel, levelFromString(""))
}
