package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			val, err, _ := flight.Do("versions", func() (any, error) {
				executions.Add(1)
				<-release
				return "14.3.1", nil
			})
			if err != nil {
				t.Errorf("Do error: %v", err)
			}
			results[idx] = val
		}(i)
	}

	close(release)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("executions: got=%d want=1", got)
	}
	for idx, val := range results {
		if val != "14.3.1" {
			t.Fatalf("result %d: got=%v want=14.3.1", idx, val)
		}
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	a, _, _ := flight.Do("a", func() (any, error) { return 1, nil })
	b, _, _ := flight.Do("b", func() (any, error) { return 2, nil })

	if a != 1 || b != 2 {
		t.Fatalf("unexpected results: a=%v b=%v", a, b)
	}
}
