package research

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// withFeatured rewrites hero.featuredIds in a catalog document.
func withFeatured(t *testing.T, data []byte, featured []string) []byte {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["hero"] = map[string]any{"featuredIds": featured}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}
