package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventJSON(t *testing.T) {
	data := []byte(`{"seq":7,"timestamp":1000000,"created_at":999,"kind":"text","is_reply":true,"payload":{"text":"hi"}}`)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, int64(7), e.Seq)
	assert.Equal(t, KindText, e.Kind)
	assert.True(t, e.IsReply)
	assert.JSONEq(t, `{"text":"hi"}`, string(e.Payload))
	assert.Equal(t, time.Unix(1, 0), e.Time())
}

func TestEventClone(t *testing.T) {
	e := &Event{Seq: 1, Payload: json.RawMessage(`{"text":"a"}`)}
	c := e.Clone()
	c.Payload[2] = 'X'
	assert.Equal(t, `{"text":"a"}`, string(e.Payload))

	var nilEvent *Event
	assert.Nil(t, nilEvent.Clone())
}

func TestListPositionString(t *testing.T) {
	assert.Equal(t, "none", ListPositionNone.String())
	assert.Equal(t, "first", ListPositionFirstOfMany.String())
	assert.Equal(t, "middle", ListPositionMiddleOfMany.String())
	assert.Equal(t, "last", ListPositionLastOfMany.String())
}
