package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestModeFrom(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"0":     false,
		"1":     true,
		"true":  true,
		" YES ": true,
		"no":    false,
	}
	for raw, want := range cases {
		getenv := func(key string) string {
			if key == testModeEnv {
				return raw
			}
			return ""
		}
		assert.Equal(t, want, testModeFrom(getenv), "value %q", raw)
	}
}
