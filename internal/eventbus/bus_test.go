package eventbus

import "testing"

func TestPublishFansOut(t *testing.T) {
	t.Parallel()
	b := New[int]()
	a, unsubA := b.Subscribe(2)
	c, unsubC := b.Subscribe(2)
	defer unsubC()

	b.Publish(1)
	if got := <-a; got != 1 {
		t.Fatalf("a got %d", got)
	}
	if got := <-c; got != 1 {
		t.Fatalf("c got %d", got)
	}

	unsubA()
	unsubA()
	if _, ok := <-a; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	b.Publish(2)
	if got := <-c; got != 2 {
		t.Fatalf("c got %d", got)
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	t.Parallel()
	b := New[string]()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish("first")
	b.Publish("second")
	if got := <-ch; got != "first" {
		t.Fatalf("got %q", got)
	}
	if b.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", b.Dropped())
	}
}
