package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func newTestQueue() *Queue {
	return NewQueue(nil, "test", 1)
}

func TestQueueKeyAndName(t *testing.T) {
	q := newTestQueue()
	if q.Name() != "test" {
		t.Errorf("Name() = %q, want test", q.Name())
	}
	if q.key() != "taskqueue:test" {
		t.Errorf("key() = %q, want taskqueue:test", q.key())
	}
}

func TestNewQueueFloorsConcurrency(t *testing.T) {
	q := NewQueue(nil, "imports", 0)
	if q.concurrency != 1 {
		t.Errorf("concurrency = %d, want 1 for a non-positive input", q.concurrency)
	}
}

func TestDispatchCallsRegisteredHandler(t *testing.T) {
	q := newTestQueue()
	called := false
	var gotArgs string
	q.Register("analyze_game", func(ctx context.Context, args json.RawMessage) error {
		called = true
		gotArgs = string(args)
		return nil
	})

	task := Task{Name: "analyze_game", Args: json.RawMessage(`{"game_id":7}`)}
	raw, _ := json.Marshal(task)
	q.dispatch(context.Background(), string(raw))

	if !called {
		t.Fatal("expected the registered handler to be invoked")
	}
	if gotArgs != `{"game_id":7}` {
		t.Errorf("handler args = %q, want {\"game_id\":7}", gotArgs)
	}
}

func TestDispatchDropsUnknownTask(t *testing.T) {
	q := newTestQueue()
	called := false
	q.Register("analyze_game", func(ctx context.Context, args json.RawMessage) error {
		called = true
		return nil
	})

	task := Task{Name: "does_not_exist", Args: json.RawMessage(`{}`)}
	raw, _ := json.Marshal(task)
	q.dispatch(context.Background(), string(raw))

	if called {
		t.Error("handler should not be invoked for an unregistered task name")
	}
}

func TestDispatchDropsMalformedTask(t *testing.T) {
	q := newTestQueue()
	called := false
	q.Register("analyze_game", func(ctx context.Context, args json.RawMessage) error {
		called = true
		return nil
	})

	q.dispatch(context.Background(), "not json")

	if called {
		t.Error("handler should not be invoked when the task payload fails to decode")
	}
}

func TestDispatchSwallowsHandlerError(t *testing.T) {
	q := newTestQueue()
	q.Register("analyze_game", func(ctx context.Context, args json.RawMessage) error {
		return errors.New("boom")
	})

	task := Task{Name: "analyze_game", Args: json.RawMessage(`{}`)}
	raw, _ := json.Marshal(task)

	// dispatch must not panic even though the handler errors; there is no
	// automatic retry path to feed the error into.
	q.dispatch(context.Background(), string(raw))
}
