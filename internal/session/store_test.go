package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreatesSessionLazily(t *testing.T) {
	st := NewStore()

	assert.False(t, st.InProgress(42))

	st.Do(42, func(s *Session) {
		require.NotNil(t, s)
		assert.Equal(t, int64(42), s.UserID)
		assert.Equal(t, FlowNone, s.Flow)
		s.Enter(FlowAuth, "auth.phone")
	})

	assert.True(t, st.InProgress(42))
	assert.False(t, st.InProgress(43))
}

func TestSessionResetClearsScratch(t *testing.T) {
	s := &Session{UserID: 1, Flow: FlowReceipt, State: "receipt.year"}
	s.PutString("year", "2024")

	s.Reset()

	assert.Equal(t, FlowNone, s.Flow)
	assert.Empty(t, s.State)
	_, ok := s.GetString("year")
	assert.False(t, ok)
}

func TestEnterDropsPreviousScratch(t *testing.T) {
	s := &Session{UserID: 1}
	s.Enter(FlowAuth, "auth.phone")
	s.PutString("phone", "+79990001122")

	s.Enter(FlowMeter, "meter.select")

	_, ok := s.GetString("phone")
	assert.False(t, ok)
	assert.Equal(t, FlowMeter, s.Flow)
	assert.Equal(t, "meter.select", s.State)
}

func TestDoSerializesPerUser(t *testing.T) {
	st := NewStore()

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)
	for w := 0; w < 2; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				st.Do(7, func(s *Session) {
					n := 0
					if v, ok := s.Get("counter"); ok {
						n = v.(int)
					}
					s.Put("counter", n+1)
				})
			}
		}()
	}
	wg.Wait()

	st.Do(7, func(s *Session) {
		v, ok := s.Get("counter")
		require.True(t, ok)
		assert.Equal(t, 2*iterations, v.(int))
	})
}

func TestDifferentUsersDoNotShareState(t *testing.T) {
	st := NewStore()

	st.Do(1, func(s *Session) { s.Enter(FlowAuth, "auth.phone") })
	st.Do(2, func(s *Session) { s.Enter(FlowReceipt, "receipt.year") })

	st.Do(1, func(s *Session) {
		assert.Equal(t, FlowAuth, s.Flow)
	})
	st.Do(2, func(s *Session) {
		assert.Equal(t, FlowReceipt, s.Flow)
	})
}
