package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// Run with: go test -race -count=1 ./internal/middleware/ -run TestRateLimiterConcurrent
func TestRateLimiterConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute, "test-concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ip := "192.168.1.1"
				if j%3 == 0 {
					ip = fmt.Sprintf("10.0.0.%d", goroutineID%10)
				}
				limiter.allow(ip)
			}
		}(i)
	}
	wg.Wait()
}

func TestRateLimiterConcurrentWithCleanup(t *testing.T) {
	limiter := NewRateLimiter(5, 10*time.Millisecond, "test-cleanup-race")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go limiter.Run(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				limiter.allow(fmt.Sprintf("10.0.0.%d", id%10))
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()
}
