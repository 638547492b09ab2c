package cao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreLibraryGroupsMatchSpecTable(t *testing.T) {
	want := []string{"Stack", "Arithmetic", "Compare/Logic", "Control", "Types", "System", "Constructors"}
	assert.Equal(t, want, coreGroups())
}

func TestCoreLibraryEveryEntryHasABuiltinHandlerOrIsSee(t *testing.T) {
	for _, e := range coreLibrary {
		if e.Name == "see" {
			continue
		}
		_, ok := builtinHandlers[e.Name]
		assert.True(t, ok, "core entry %q has no builtin handler", e.Name)
	}
}

func TestLookupCoreFindsStackWords(t *testing.T) {
	for _, name := range []string{"dup", "drop", "swap", "over", "rot", "nip", "tuck"} {
		e, ok := lookupCore(name)
		require.True(t, ok, name)
		assert.Equal(t, "Stack", e.Group)
	}
}

func TestLookupCoreUnknown(t *testing.T) {
	_, ok := lookupCore("frobnicate")
	assert.False(t, ok)
}
