package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.NewWithOutput(&buf, "info", "json")
	require.NoError(t, err)
	handle := logEvent(log)

	err = handle(context.Background(), mq.Message{
		ID:   "m-1",
		Data: []byte(`{"type":"address.created","user_id":1,"contact_id":2,"address_id":3,"occurred_at":"2026-01-02T03:04:05Z"}`),
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "address.created", line["type"])
	assert.Equal(t, float64(2), line["contact_id"])
	assert.Equal(t, float64(3), line["address_id"])

	buf.Reset()
	require.NoError(t, handle(context.Background(), mq.Message{ID: "m-2", Data: []byte("not json")}))
	assert.Contains(t, buf.String(), "undecodable event")
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"server"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"events", "watch"},
	} {
		found, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}
