package web

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Zaraius/3d-scanner/internal/output"
)

func TestBroadcaster_SubscribeAndReceive(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast("info", "hello")

	select {
	case msg := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Msg != "hello" {
			t.Errorf("msg = %q, want \"hello\"", evt.Msg)
		}
		if evt.Level != "info" {
			t.Errorf("level = %q, want \"info\"", evt.Level)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	b := NewStatusBroadcaster()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Broadcast("info", "multi")

	for i, ch := range []<-chan string{ch1, ch2} {
		select {
		case msg := <-ch:
			var evt StatusEvent
			if err := json.Unmarshal([]byte(msg), &evt); err != nil {
				t.Fatalf("subscriber %d: unmarshal: %v", i, err)
			}
			if evt.Msg != "multi" {
				t.Errorf("subscriber %d: msg = %q, want \"multi\"", i, evt.Msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timeout", i)
		}
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	// Channel should be closed after unsubscribe
	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
}

func TestBroadcaster_FullChannelDropsMessage(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	// Fill the channel buffer (64 messages)
	for i := 0; i < 64; i++ {
		b.Broadcast("info", "fill")
	}

	// This should not panic or block — message should be silently dropped
	b.Broadcast("info", "overflow")

	// Drain and count messages
	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			goto done
		}
	}
done:
	if count != 64 {
		t.Errorf("expected 64 buffered messages, got %d", count)
	}
}

func TestBroadcastWriter_ForwardsTrimmedLines(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	if _, err := w.Write([]byte("  scan line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case msg := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Msg != "scan line" {
			t.Errorf("msg = %q, want \"scan line\"", evt.Msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}

func TestBroadcastWriter_SkipsBlankWrites(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	if _, err := w.Write([]byte("   \n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case msg := <-ch:
		t.Errorf("unexpected broadcast for blank write: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecordTee_ForwardsAndBroadcasts(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	port := &output.MockPort{}
	tee := &RecordTee{
		Next:        output.NewEncoder(port, 5, 45),
		Broadcaster: b,
	}

	rec := output.Record{PanDeg: 9, TiltDeg: 50, PulseWidthUs: 718}
	if err := tee.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Forwarded to the underlying sink with references applied
	if got := string(port.WrittenData); got != "4,5,718\n" {
		t.Errorf("forwarded = %q, want %q", got, "4,5,718\n")
	}

	// Mirrored to SSE clients as raw angles
	select {
	case msg := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Level != "point" {
			t.Errorf("level = %q, want \"point\"", evt.Level)
		}
		if evt.Msg != "9,50,718" {
			t.Errorf("msg = %q, want \"9,50,718\"", evt.Msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for point broadcast")
	}
}

func TestRecordTee_NilBroadcaster(t *testing.T) {
	port := &output.MockPort{}
	tee := &RecordTee{Next: output.NewEncoder(port, 0, 0)}

	if err := tee.Write(output.Record{PanDeg: 1, TiltDeg: 2, PulseWidthUs: 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := string(port.WrittenData); got != "1,2,3\n" {
		t.Errorf("forwarded = %q, want %q", got, "1,2,3\n")
	}
}
