package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInstructions_Default(t *testing.T) {
	p := &Prompt{}
	result := p.FullInstructions("o3")
	assert.Equal(t, baseInstructions, result)
}

func TestFullInstructions_UserAppended(t *testing.T) {
	p := &Prompt{UserInstructions: "always answer in French"}
	result := p.FullInstructions("o3")
	assert.True(t, strings.HasPrefix(result, baseInstructions))
	assert.True(t, strings.HasSuffix(result, "always answer in French"))
}

func TestFullInstructions_Override(t *testing.T) {
	p := &Prompt{
		BaseInstructionsOverride: "you are a test harness",
		UserInstructions:         "be brief",
	}
	result := p.FullInstructions("o3")
	assert.Equal(t, "you are a test harness\nbe brief", result)
	assert.NotContains(t, result, baseInstructions)
}

func TestFullInstructions_ApplyPatchAddendumForLegacyFamily(t *testing.T) {
	p := &Prompt{}
	assert.Contains(t, p.FullInstructions("gpt-4.1"), applyPatchToolInstructions)
	assert.Contains(t, p.FullInstructions("gpt-4.1-mini"), applyPatchToolInstructions)
	assert.NotContains(t, p.FullInstructions("o3"), applyPatchToolInstructions)
	assert.NotContains(t, p.FullInstructions("gpt-4o"), applyPatchToolInstructions)
}

func TestFullInstructions_Ordering(t *testing.T) {
	p := &Prompt{UserInstructions: "user section"}
	result := p.FullInstructions("gpt-4.1")
	userIdx := strings.Index(result, "user section")
	patchIdx := strings.Index(result, applyPatchToolInstructions)
	assert.Greater(t, userIdx, 0)
	assert.Greater(t, patchIdx, userIdx)
}
