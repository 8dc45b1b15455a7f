package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrNoScriptedResponse is returned by FakeClient when its script is exhausted
// and no Respond func is set.
var ErrNoScriptedResponse = errors.New("fake llm: no scripted response left")

// FakeClient is a deterministic Client for offline tests. It replays queued
// replies in order, or delegates to Respond when set, and records every call.
type FakeClient struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   [][]Message

	// Respond, when non-nil, answers calls after the queue is drained.
	Respond func(messages []Message) (string, error)
}

type fakeReply struct {
	text string
	err  error
}

// NewFakeClient returns a FakeClient that answers with replies in order.
func NewFakeClient(replies ...string) *FakeClient {
	f := &FakeClient{}
	for _, r := range replies {
		f.Push(r)
	}
	return f
}

// Push queues a successful reply.
func (f *FakeClient) Push(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{text: text})
}

// PushError queues a failure.
func (f *FakeClient) PushError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{err: err})
}

func (f *FakeClient) Name() string { return "fake/scripted" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.calls = append(f.calls, append([]Message(nil), messages...))
	if len(f.replies) > 0 {
		r := f.replies[0]
		f.replies = f.replies[1:]
		f.mu.Unlock()
		return r.text, r.err
	}
	respond := f.Respond
	f.mu.Unlock()

	if respond != nil {
		return respond(messages)
	}
	return "", ErrNoScriptedResponse
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() [][]Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]Message, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times Complete was called.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
