package stream

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func expectMessage(t *testing.T, ch <-chan []byte, want string) {
	t.Helper()
	select {
	case msg := <-ch:
		if string(msg) != want {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %q", want)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-1")
	defer hub.Unregister(client)
	other := hub.Register("user-2")
	defer hub.Unregister(other)

	hub.Broadcast("user-1", []byte("hello"))
	expectMessage(t, client.Send, "hello")

	select {
	case <-other.Send:
		t.Fatalf("message leaked to another user")
	default:
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "recorder:abc:events" {
		t.Fatalf("unexpected channel %q", ch)
	}
	if userIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected user id")
	}
	if userIDFromChannel("bad") != "" {
		t.Fatalf("expected empty user id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("user-2")
	hub.Unregister(client)
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisFanOutAcrossInstances(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	a := NewHub(rdb)
	defer a.Close()
	b := NewHub(rdb)
	defer b.Close()

	local := a.Register("user-1")
	defer a.Unregister(local)
	remote := b.Register("user-1")
	defer b.Unregister(remote)

	a.Broadcast("user-1", []byte("ping"))
	expectMessage(t, local.Send, "ping")
	expectMessage(t, remote.Send, "ping")
}

func TestHubRedisUnavailableDeliversLocally(t *testing.T) {
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	server.Close()
	defer rdb.Close()

	hub := NewHub(rdb)
	defer hub.Close()
	client := hub.Register("user-bad")
	defer hub.Unregister(client)

	hub.Broadcast("user-bad", []byte("ping"))
	expectMessage(t, client.Send, "ping")
}
