package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvDefaults(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv("SAHELYS_TEST_UNSET", "fallback"))
	assert.Equal(t, 42, GetEnv("SAHELYS_TEST_UNSET", 42))
	assert.Equal(t, true, GetEnv("SAHELYS_TEST_UNSET", true))
}

func TestGetEnvParsing(t *testing.T) {
	t.Setenv("SAHELYS_TEST_INT", "17")
	assert.Equal(t, 17, GetEnv("SAHELYS_TEST_INT", 0))

	t.Setenv("SAHELYS_TEST_BOOL", "false")
	assert.Equal(t, false, GetEnv("SAHELYS_TEST_BOOL", true))

	t.Setenv("SAHELYS_TEST_BAD_INT", "not-a-number")
	assert.Equal(t, 5, GetEnv("SAHELYS_TEST_BAD_INT", 5))

	t.Setenv("SAHELYS_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("SAHELYS_TEST_STR", "default"))
}

func TestGetCORSOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://a.example, http://b.example ,,"}
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.GetCORSOrigins())
}
