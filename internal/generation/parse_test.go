//go:build !integration

package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("strict object", func(t *testing.T) {
		obj, err := Parse(`{"title":"Trip","days":[]}`)
		require.NoError(t, err)
		assert.Equal(t, "Trip", obj["title"])
	})

	t.Run("repairs a missing closing brace", func(t *testing.T) {
		obj, err := Parse(`{"title":"Trip","days":[{"dayIndex":0}]`)
		require.NoError(t, err)
		assert.Equal(t, "Trip", obj["title"])
		assert.Len(t, obj["days"], 1)
	})

	t.Run("repairs a trailing comma", func(t *testing.T) {
		obj, err := Parse(`{"title":"Trip","days":[],}`)
		require.NoError(t, err)
		assert.Equal(t, "Trip", obj["title"])
	})

	for name, in := range map[string]string{
		"plain text": "not-json",
		"array":      "[1,2,3]",
		"empty":      "",
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
			assert.NotEmpty(t, pe.Error())
		})
	}
}
