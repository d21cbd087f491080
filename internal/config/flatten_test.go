package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]any{
		"log_level": "info",
		"scroll": map[string]any{
			"near_bottom_tolerance": 120.0,
			"animations":            true,
		},
		"timeline": map[string]any{
			"section_threshold": "4m",
			"supported_kinds":   []any{"text", "picture"},
		},
		"telegram": map[string]any{},
	})

	assert.Equal(t, map[string]any{
		"log_level":                    "info",
		"scroll.near_bottom_tolerance": 120.0,
		"scroll.animations":            true,
		"timeline.section_threshold":   "4m",
		"timeline.supported_kinds":     []any{"text", "picture"},
	}, got, "arrays are leaves and empty objects vanish")
}

func TestUnflatten(t *testing.T) {
	got := Unflatten(map[string]any{
		"fetch.base_url":      "http://events.local",
		"fetch.conversations": []any{"api:a"},
		"scroll.animations":   false,
	})

	fetch, ok := got["fetch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "http://events.local", fetch["base_url"])
	assert.Equal(t, []any{"api:a"}, fetch["conversations"])
	scroll, ok := got["scroll"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, scroll["animations"])
}

func TestUnflattenKeyThroughScalar(t *testing.T) {
	got := Unflatten(map[string]any{
		"render":       375.0,
		"render.width": 320.0,
	})
	render, ok := got["render"].(map[string]any)
	require.True(t, ok, "the nested key wins over the scalar")
	assert.Equal(t, 320.0, render["width"])
}

func TestFlattenRoundTripsDefaults(t *testing.T) {
	m, err := ToMap(Default())
	require.NoError(t, err)

	flat := Flatten(m)
	assert.Equal(t, "4m", flat["timeline.section_threshold"])
	assert.Equal(t, "api:", flat["fetch.key_prefix"])
	assert.Equal(t, m, Unflatten(flat))
}

func TestMaskSecrets(t *testing.T) {
	tests := []struct {
		name string
		key  string
		in   any
		want any
	}{
		{"api key keeps last four", "fetch.api_key", "key-test123456", "***3456"},
		{"telegram token", "telegram.token", "123456:ABCdefGHIjkl", "***Ijkl"},
		{"short secret", "fetch.api_key", "ab", "***ab"},
		{"empty secret stays empty", "fetch.api_key", "", ""},
		{"non-secret untouched", "fetch.base_url", "http://events.local", "http://events.local"},
		{"non-string untouched", "scroll.merge_tolerance", 10.0, 10.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskSecrets(map[string]any{tt.key: tt.in})
			assert.Equal(t, tt.want, got[tt.key])
		})
	}
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]any{"scroll.animations": true, "fetch.base_url": "", "log_level": "info"})
	assert.Equal(t, []string{"fetch.base_url", "log_level", "scroll.animations"}, keys)
}
