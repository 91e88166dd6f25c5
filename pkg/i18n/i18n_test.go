package i18n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalesShareKeys(t *testing.T) {
	read := func(name string) map[string]string {
		raw, err := localeFS.ReadFile("locales/" + name)
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	}
	es := read("active.es.json")
	en := read("active.en.json")

	require.Len(t, en, len(es))
	for k := range es {
		assert.Contains(t, en, k)
	}
}

func TestLocalize(t *testing.T) {
	assert.Equal(t, "Invalid email or password", Localize("en", "AuthInvalidCredentials", nil))
	assert.Equal(t, "Email o contraseña incorrectos", Localize("es", "AuthInvalidCredentials", nil))
	assert.Equal(t, "Email o contraseña incorrectos", Localize("fr", "AuthInvalidCredentials", nil))
	assert.Equal(t, "The server rejected the request: boom",
		Localize("en", "ServerRejected", map[string]any{"Message": "boom"}))
	assert.Equal(t, "NoSuchMessage", Localize("en", "NoSuchMessage", nil))
}
