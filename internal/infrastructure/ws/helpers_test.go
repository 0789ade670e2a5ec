package ws

import (
	"testing"
	"time"
)

// newTestClient builds a client that is not backed by a real connection.
// Envelopes queue on the Message channel where tests can inspect them.
func newTestClient(id string) *Client {
	return &Client{
		Message: make(chan *Envelope, 64),
		ID:      id,
	}
}

// recvEnvelope waits for the next queued envelope.
func recvEnvelope(t *testing.T, c *Client) *Envelope {
	t.Helper()

	select {
	case env := <-c.Message:
		return env
	case <-time.After(2 * time.Second):
		t.Fatalf("client %s: no envelope received", c.ID)
		return nil
	}
}

// recvEnvelopeOfType discards envelopes until one of the wanted type
// arrives.
func recvEnvelopeOfType(t *testing.T, c *Client, eventType string) *Envelope {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case env := <-c.Message:
			if env.Type == eventType {
				return env
			}
		case <-deadline:
			t.Fatalf("client %s: no %s envelope received", c.ID, eventType)
			return nil
		}
	}
}

// assertNoEnvelope verifies the client's queue stays empty.
func assertNoEnvelope(t *testing.T, c *Client) {
	t.Helper()

	select {
	case env := <-c.Message:
		t.Fatalf("client %s: unexpected envelope %s", c.ID, env.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func drainEnvelopes(c *Client) []*Envelope {
	var out []*Envelope
	for {
		select {
		case env := <-c.Message:
			out = append(out, env)
		default:
			return out
		}
	}
}
