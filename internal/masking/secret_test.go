package masking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holder struct {
	ClientID Secret `json:"client_id"`
	Name     string `json:"name"`
}

func TestSecretNeverPrintsPlaintext(t *testing.T) {
	h := holder{ClientID: NewSecret("super-secret"), Name: "acme"}

	for _, verb := range []string{"%v", "%+v", "%#v", "%s", "%q"} {
		out := fmt.Sprintf(verb, h)
		assert.NotContains(t, out, "super-secret", verb)
	}

	b, err := json.Marshal(h)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "super-secret")
	assert.Contains(t, string(b), Redacted)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Interface("holder", h).Stringer("id", h.ClientID).Msg("x")
	assert.NotContains(t, buf.String(), "super-secret")

	assert.Equal(t, "super-secret", h.ClientID.Expose())
}

func TestSecretUnmarshalsPlainString(t *testing.T) {
	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"client_id":"abc","name":"n"}`), &h))
	assert.Equal(t, "abc", h.ClientID.Expose())
	assert.False(t, h.ClientID.IsEmpty())
}

func TestMaskHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abcdefgh1234")
	h.Set("X-IBM-Client-Secret", "secretvalue")
	h.Set("Content-Type", "application/json")

	masked := MaskHeaders(h)
	assert.Equal(t, "Bearer ********1234", masked["Authorization"])
	assert.Equal(t, "*******alue", masked["X-Ibm-Client-Secret"])
	assert.Equal(t, "application/json", masked["Content-Type"])
}
