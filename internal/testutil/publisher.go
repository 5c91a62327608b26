package testutil

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/jjudge-oj/contacts/types"
)

// Publisher records every published message. Set Err to make Publish fail.
type Publisher struct {
	Err error

	mu       sync.Mutex
	channels []string
	events   []types.Event
}

func (p *Publisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	var event types.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.events = append(p.events, event)
	return strconv.Itoa(len(p.events)), nil
}

// Events returns the decoded events in publish order.
func (p *Publisher) Events() []types.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Event(nil), p.events...)
}

// Channels returns the channel of every published event.
func (p *Publisher) Channels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.channels...)
}
