package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelForMode(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", ModelForMode("quick", "gpt-4o-mini", "gpt-4o"))
	assert.Equal(t, "gpt-4o-mini", ModelForMode("standard", "gpt-4o-mini", "gpt-4o"))
	assert.Equal(t, "gpt-4o", ModelForMode("deep", "gpt-4o-mini", "gpt-4o"))
}

func TestTimeoutSecondsForMode(t *testing.T) {
	assert.Equal(t, 30, TimeoutSecondsForMode("quick", 30, 45, 60))
	assert.Equal(t, 45, TimeoutSecondsForMode("standard", 30, 45, 60))
	assert.Equal(t, 60, TimeoutSecondsForMode("deep", 30, 45, 60))
	assert.Equal(t, 45, TimeoutSecondsForMode("unknown", 30, 45, 60), "unrecognized modes fall back to the standard timeout")
}
