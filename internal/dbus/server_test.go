package dbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ocnotify/internal/adapter/input"
)

func newTestServer() *Server {
	return NewServer(func() []string { return []string{"paplay", "bell"} },
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServer_Name(t *testing.T) {
	assert.Equal(t, "dbus", newTestServer().Name())
}

func TestObject_Emit(t *testing.T) {
	s := newTestServer()
	o := &object{s}

	notifies, dErr := o.Emit("permission.updated")
	assert.Nil(t, dErr)
	assert.True(t, notifies)

	notifies, dErr = o.Emit("message.updated")
	assert.Nil(t, dErr)
	assert.False(t, notifies)

	_, dErr = o.Emit("  ")
	assert.NotNil(t, dErr)

	assert.Equal(t, "permission.updated", (<-s.incoming).Type)
	assert.Equal(t, "message.updated", (<-s.incoming).Type)
	assert.Empty(t, s.incoming)
}

func TestObject_Shortcuts(t *testing.T) {
	s := newTestServer()
	o := &object{s}

	assert.Nil(t, o.Permission())
	assert.Nil(t, o.Completion())

	assert.Equal(t, "permission.updated", (<-s.incoming).Type)
	assert.Equal(t, "session.idle", (<-s.incoming).Type)
}

func TestObject_Mechanisms(t *testing.T) {
	mechanisms, dErr := (&object{newTestServer()}).Mechanisms()
	assert.Nil(t, dErr)
	assert.Equal(t, []string{"paplay", "bell"}, mechanisms)

	mechanisms, dErr = (&object{NewServer(nil, nil)}).Mechanisms()
	assert.Nil(t, dErr)
	assert.Empty(t, mechanisms)
}

func TestObject_QueueFull(t *testing.T) {
	s := newTestServer()
	o := &object{s}

	for range queueSize {
		_, dErr := o.Emit("session.idle")
		require.Nil(t, dErr)
	}
	_, dErr := o.Emit("session.idle")
	assert.NotNil(t, dErr)
}

func TestServer_Serve(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan input.Event, 4)

	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, events) }()

	_, dErr := (&object{s}).Emit("session.idle")
	require.Nil(t, dErr)

	select {
	case ev := <-events:
		assert.Equal(t, "session.idle", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestIntrospection(t *testing.T) {
	node := introspectNode()
	assert.Equal(t, DBusPath, node.Name)
	require.Len(t, node.Interfaces, 2)

	var names []string
	for _, m := range node.Interfaces[1].Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, DBusInterface, node.Interfaces[1].Name)
	assert.Equal(t, []string{"Emit", "Permission", "Completion", "Mechanisms"}, names)
}
