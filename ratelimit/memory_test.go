package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryLimiterTestSuite struct {
	suite.Suite
	limiter *MemoryLimiter
	now     time.Time
}

func (s *MemoryLimiterTestSuite) SetupTest() {

	s.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.limiter = NewMemoryLimiter(3, 15*time.Minute)
	s.limiter.now = func() time.Time { return s.now }
}

func (s *MemoryLimiterTestSuite) allow(key string) Result {

	result, err := s.limiter.Allow(context.Background(), key)
	s.Require().NoError(err)

	return result
}

func (s *MemoryLimiterTestSuite) TestAllow() {

	s.Run("Should allow requests up to the limit", func() {

		for remaining := 2; remaining >= 0; remaining-- {

			result := s.allow("10.0.0.1")
			s.Require().True(result.Allowed)
			s.Require().Equal(3, result.Limit)
			s.Require().Equal(remaining, result.Remaining)
		}
	})

	s.Run("Should reject requests over the limit", func() {

		result := s.allow("10.0.0.1")
		s.Require().False(result.Allowed)
		s.Require().Zero(result.Remaining)
		s.Require().Equal(15*time.Minute, result.RetryAfter)
	})

	s.Run("Should count clients separately", func() {

		s.Require().True(s.allow("10.0.0.2").Allowed)
	})

	s.Run("Should slide the window", func() {

		s.now = s.now.Add(10 * time.Minute)
		s.Require().False(s.allow("10.0.0.1").Allowed)

		s.now = s.now.Add(5 * time.Minute)

		result := s.allow("10.0.0.1")
		s.Require().True(result.Allowed)
		s.Require().Equal(2, result.Remaining)
	})
}

func (s *MemoryLimiterTestSuite) TestSweep() {

	s.allow("10.0.0.1")
	s.now = s.now.Add(time.Minute)
	s.allow("10.0.0.2")

	s.now = s.now.Add(14*time.Minute + time.Second)
	s.limiter.Sweep()

	s.Require().NotContains(s.limiter.hits, "10.0.0.1")
	s.Require().Contains(s.limiter.hits, "10.0.0.2")
}

func (s *MemoryLimiterTestSuite) TestConcurrentAllow() {

	limiter := NewMemoryLimiter(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var allowed int

	for i := 0; i < 100; i++ {

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			result, err := limiter.Allow(context.Background(), fmt.Sprintf("client-%d", i%2))
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	s.Require().Equal(100, allowed)

	result, err := limiter.Allow(context.Background(), "client-0")
	s.Require().NoError(err)
	s.Require().False(result.Allowed)
}

func TestMemoryLimiter(t *testing.T) {
	suite.Run(t, new(MemoryLimiterTestSuite))
}
