package events

import "testing"

func TestFuncBus(t *testing.T) {
	var got []Event
	bus := Func(func(e Event) { got = append(got, e) })

	bus.Emit(FileLoaded)
	bus.Emit(FileChanged)

	if len(got) != 2 || got[0] != FileLoaded || got[1] != FileChanged {
		t.Errorf("got %v", got)
	}
}

func TestChannelBus_Delivers(t *testing.T) {
	bus := NewChannel(4)
	defer bus.Close()

	bus.Emit(FileLoaded)

	select {
	case e := <-bus.Events():
		if e != FileLoaded {
			t.Errorf("got %q, want %q", e, FileLoaded)
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestChannelBus_DropsWhenFull(t *testing.T) {
	bus := NewChannel(1)
	defer bus.Close()

	// Second emit must not block even with no receiver.
	bus.Emit(FileLoaded)
	bus.Emit(FileChanged)

	if e := <-bus.Events(); e != FileLoaded {
		t.Errorf("got %q, want first event retained", e)
	}
	select {
	case e := <-bus.Events():
		t.Errorf("unexpected second event %q", e)
	default:
	}
}

func TestChannelBus_CloseIdempotent(t *testing.T) {
	bus := NewChannel(1)
	bus.Close()
	bus.Close()

	if _, ok := <-bus.Events(); ok {
		t.Error("expected closed channel")
	}
}
