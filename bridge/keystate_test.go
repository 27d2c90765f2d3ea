package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySlotRoundTrip(t *testing.T) {
	var s keySlot
	assert.Equal(t, KeyState{}, s.Load(), "zero slot means no key held")

	s.Store(KeyState{Modifier: 0x02, Keycode: 0x04})
	assert.Equal(t, KeyState{Modifier: 0x02, Keycode: 0x04}, s.Load())

	s.Store(KeyState{Modifier: 0x00, Keycode: 0x00})
	assert.Equal(t, KeyState{}, s.Load(), "release overwrites the held key")
}

// The writer alternates between two states whose modifier always equals their
// keycode; a torn read would surface as a mismatched pair.
func TestKeySlotNoTornReads(t *testing.T) {
	var s keySlot
	s.Store(KeyState{Modifier: 0xaa, Keycode: 0xaa})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		states := [2]KeyState{
			{Modifier: 0xaa, Keycode: 0xaa},
			{Modifier: 0x55, Keycode: 0x55},
		}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				s.Store(states[i&1])
			}
		}
	}()

	for i := 0; i < 100000; i++ {
		st := s.Load()
		if st.Modifier != st.Keycode {
			t.Fatalf("torn read: modifier 0x%02x keycode 0x%02x", st.Modifier, st.Keycode)
		}
	}
	close(stop)
	wg.Wait()
}
