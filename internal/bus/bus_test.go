package bus

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func msgUpdate(chatID int64, text string) domain.Update {
	return domain.Update{Message: &domain.InboundMessage{ChatID: chatID, Text: text}}
}

func TestPublishSubscribe_Order(t *testing.T) {
	b := New(4, testLogger())
	b.Publish(msgUpdate(1, "a"))
	b.Publish(msgUpdate(1, "b"))

	ch := b.Subscribe()
	if got := (<-ch).Message.Text; got != "a" {
		t.Fatalf("expected 'a', got %q", got)
	}
	if got := (<-ch).Message.Text; got != "b" {
		t.Fatalf("expected 'b', got %q", got)
	}
}

func TestPublish_AfterCloseIsDropped(t *testing.T) {
	b := New(1, testLogger())
	b.Close()
	b.Publish(msgUpdate(1, "late")) // must not panic

	if _, ok := <-b.Subscribe(); ok {
		t.Fatal("expected closed channel")
	}
}

func TestClose_Idempotent(t *testing.T) {
	b := New(1, testLogger())
	b.Close()
	b.Close()
}

func TestPublish_FullBusDropsAfterTimeout(t *testing.T) {
	b := New(1, testLogger())
	b.publishTimeout = 20 * time.Millisecond

	b.Publish(msgUpdate(1, "kept"))
	start := time.Now()
	b.Publish(msgUpdate(1, "dropped"))
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("expected publish to wait for the timeout")
	}

	if got := (<-b.Subscribe()).Message.Text; got != "kept" {
		t.Fatalf("expected 'kept', got %q", got)
	}
	select {
	case upd := <-b.Subscribe():
		t.Fatalf("unexpected update %+v", upd.Message)
	default:
	}
}

func TestPublish_FullBusDeliversWhenDrained(t *testing.T) {
	b := New(1, testLogger())
	b.Publish(msgUpdate(1, "first"))

	done := make(chan struct{})
	go func() {
		b.Publish(msgUpdate(2, "second"))
		close(done)
	}()

	<-b.Subscribe()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish did not complete after buffer drained")
	}
	if got := (<-b.Subscribe()).ChatID(); got != 2 {
		t.Fatalf("expected chat 2, got %d", got)
	}
}
