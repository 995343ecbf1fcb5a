package utils

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "run-") {
		t.Errorf("GenerateRunID should start with 'run-': %s", id)
	}
	// run-YYYYMMDD-HHMMSS-xxxxxxxx
	if len(id) != len("run-20060102-150405-")+8 {
		t.Errorf("unexpected run ID length: %s", id)
	}
}

func TestGenerateRunIDConcurrentUnique(t *testing.T) {
	const n = 200
	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := GenerateRunID()
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate run ID %s", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()
}
