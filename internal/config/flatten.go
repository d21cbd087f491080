package config

import (
	"sort"
	"strings"
)

// secretKeys are masked by `config list` and echoed as *** by `config set`.
var secretKeys = map[string]bool{
	"fetch.api_key":  true,
	"telegram.token": true,
}

// IsSecretKey reports whether key holds a credential.
func IsSecretKey(key string) bool {
	return secretKeys[key]
}

// Flatten turns the decoded config JSON into dotted keys such as
// "scroll.merge_tolerance". Arrays (timeline.supported_kinds,
// fetch.conversations) stay whole values.
func Flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if child, ok := v.(map[string]any); ok {
				walk(prefix+k+".", child)
				continue
			}
			out[prefix+k] = v
		}
	}
	walk("", m)
	return out
}

// Unflatten rebuilds the nested form Flatten came from. A dotted key that
// runs through a scalar replaces the scalar with an object.
func Unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for _, key := range SortedKeys(flat) {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = flat[key]
	}
	return out
}

// MaskSecrets copies flat, replacing non-empty secret strings with "***"
// and their last four characters.
func MaskSecrets(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))
	for k, v := range flat {
		out[k] = v
		if s, ok := v.(string); ok && s != "" && IsSecretKey(k) {
			out[k] = "***" + s[max(0, len(s)-4):]
		}
	}
	return out
}

// SortedKeys returns the keys of flat in lexical order.
func SortedKeys(flat map[string]any) []string {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
