package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "Business not found", T("en", KeyBusinessNotFound))
	assert.Equal(t, "व्यवसाय नहीं मिला", T("hi", KeyBusinessNotFound))
	assert.Equal(t, "Business status set to approved", T("en", KeyAdminStatusUpdated, "approved"))

	// unknown language falls back to the default bundle
	assert.Equal(t, "Business not found", T("fr", KeyBusinessNotFound))
	// unknown key is returned as-is
	assert.Equal(t, "no.such.key", T("en", "no.such.key"))

	assert.True(t, IsSupported("hi"))
	assert.False(t, IsSupported("fr"))
	assert.Equal(t, []string{"en", "hi"}, GetSupportedLanguages())
}

func TestBundlesHaveSameKeys(t *testing.T) {
	require.NoError(t, Initialize("en"))

	en := instance.translations["en"]
	for lang, bundle := range instance.translations {
		for key := range en {
			_, ok := bundle[key]
			assert.Truef(t, ok, "%s bundle is missing %q", lang, key)
		}
	}
}
