package listener

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startListener(t *testing.T, onLine func(remote, line string)) (*Listener, context.CancelFunc) {
	t.Helper()
	l := &Listener{Addr: "127.0.0.1:0", OnLine: onLine}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()

	require.Eventually(t, func() bool { return l.BoundAddr() != nil }, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("listener did not stop")
		}
	})
	return l, cancel
}

func TestListenerReceivesLines(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	l, _ := startListener(t, func(_, line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})

	conn, err := net.Dial("tcp", l.BoundAddr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("callback one\ncallback two\n\n"))
	require.NoError(t, err)
	conn.Close()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(lines) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"callback one", "callback two"}, lines)
}

func TestListenerHandlesConcurrentConnections(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	l, _ := startListener(t, func(_, line string) {
		mu.Lock()
		seen[line] = true
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for _, payload := range []string{"alpha", "beta", "gamma"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			conn, err := net.Dial("tcp", l.BoundAddr().String())
			require.NoError(t, err)
			defer conn.Close()
			conn.Write([]byte(p + "\n"))
		}(payload)
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListenerStopsOnCancel(t *testing.T) {
	l := &Listener{Addr: "127.0.0.1:0"}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()
	require.Eventually(t, func() bool { return l.BoundAddr() != nil }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
