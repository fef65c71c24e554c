package reactorcore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionStore_PushAndGetCurrent(t *testing.T) {
	s := NewActionStore[int]()
	tag := NewTag(10*time.Millisecond, 0)
	s.Push(tag, 5)

	v, ok := s.GetCurrent(tag)
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.True(t, s.IsPresent(tag))

	_, ok = s.GetCurrent(NewTag(20*time.Millisecond, 0))
	assert.False(t, ok)
}

func TestActionStore_PushReplacesSameTag(t *testing.T) {
	s := NewActionStore[string]()
	tag := NewTag(time.Millisecond, 0)
	s.Push(tag, "first")
	s.Push(tag, "second")

	v, ok := s.GetCurrent(tag)
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestActionStore_DropOlderThan(t *testing.T) {
	s := NewActionStore[int]()
	s.Push(NewTag(time.Millisecond, 0), 1)
	s.Push(NewTag(2*time.Millisecond, 0), 2)
	s.Push(NewTag(3*time.Millisecond, 0), 3)

	s.DropOlderThan(NewTag(2*time.Millisecond, 0))

	_, ok := s.GetCurrent(NewTag(time.Millisecond, 0))
	assert.False(t, ok)
	_, ok = s.GetCurrent(NewTag(2*time.Millisecond, 0))
	assert.True(t, ok)
	_, ok = s.GetCurrent(NewTag(3*time.Millisecond, 0))
	assert.True(t, ok)
}

func TestActionStore_OrdersEntriesByTagRegardlessOfPushOrder(t *testing.T) {
	s := NewActionStore[int]()
	s.Push(NewTag(3*time.Millisecond, 0), 3)
	s.Push(NewTag(time.Millisecond, 0), 1)
	s.Push(NewTag(2*time.Millisecond, 0), 2)

	require.Len(t, s.entries, 3)
	assert.Equal(t, NewTag(time.Millisecond, 0), s.entries[0].tag)
	assert.Equal(t, NewTag(2*time.Millisecond, 0), s.entries[1].tag)
	assert.Equal(t, NewTag(3*time.Millisecond, 0), s.entries[2].tag)
}

func TestPhysicalActionStore_ConcurrentPush(t *testing.T) {
	s := NewPhysicalActionStore[int]()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Push(NewTag(time.Duration(i)*time.Millisecond, 0), i)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 100; i++ {
		v, ok := s.GetCurrent(NewTag(time.Duration(i)*time.Millisecond, 0))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}
