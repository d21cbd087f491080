package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/transcript/internal/config"
	"github.com/user/transcript/internal/types"
	"github.com/user/transcript/internal/viewsync"
)

func TestSyncFactoryDefaults(t *testing.T) {
	cfg := config.Default()
	factory, err := syncFactory(cfg)
	require.NoError(t, err)

	v := factory(viewsync.NewRecorder(0))
	assert.Equal(t, 4*time.Minute, v.Store().Threshold())
	assert.Equal(t, 375.0, v.Width())
	assert.True(t, v.Store().Supports(types.KindPicture))
}

func TestSyncFactorySupportedKinds(t *testing.T) {
	cfg := config.Default()
	cfg.Timeline.SupportedKinds = []string{"text"}
	cfg.Timeline.SectionThreshold = "90s"
	factory, err := syncFactory(cfg)
	require.NoError(t, err)

	v := factory(viewsync.NewRecorder(0))
	assert.Equal(t, 90*time.Second, v.Store().Threshold())
	assert.False(t, v.AppendLiveEvent(&types.Event{Seq: 1, Kind: types.KindPicture}))
	assert.True(t, v.AppendLiveEvent(&types.Event{Seq: 2, Kind: types.KindText, Payload: json.RawMessage(`{"text":"hi"}`)}))
}

func TestSyncFactoryRejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Timeline.SectionThreshold = "soon"
	_, err := syncFactory(cfg)
	assert.Error(t, err)
}

func TestRenderMetricsOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Render.CharWidth = 7
	cfg.Render.LineHeight = 0
	m := renderMetrics(cfg)
	assert.Equal(t, 7.0, m.CharWidth)
	assert.Equal(t, 20.0, m.LineHeight)
}

func TestFetchRegistry(t *testing.T) {
	cfg := config.Default()
	_, ok := fetchRegistry(cfg).Lookup("api:room")
	assert.False(t, ok, "no base URL registers nothing")

	cfg.Fetch.BaseURL = "http://127.0.0.1:1"
	reg := fetchRegistry(cfg)
	_, ok = reg.Lookup("api:room")
	assert.True(t, ok)
	_, ok = reg.Lookup("telegram:1")
	assert.False(t, ok)
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.jsonl")
	require.NoError(t, os.WriteFile(script, []byte(
		`{"op":"set","events":[{"seq":1,"timestamp":0,"kind":"text","payload":{"text":"hi"}}]}
{"seq":2,"timestamp":1000000,"kind":"text","is_reply":true,"payload":{"text":"hello"}}
{"op":"typing","typing":true}
`), 0o644))
	out := filepath.Join(dir, "snap.json")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "config.json"), "replay", script, "--out", out})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		replayOut = ""
	})
	require.NoError(t, rootCmd.Execute())

	text := buf.String()
	assert.Contains(t, text, "1:set")
	assert.Contains(t, text, "resetAll")
	assert.Contains(t, text, "events: 2")
	assert.Contains(t, text, "typing")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var snap viewsync.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, int64(2), snap.MaxSeq)
	assert.True(t, snap.Typing)
	require.Len(t, snap.Sections, 1)
	assert.Len(t, snap.Sections[0].Rows, 3)
}
