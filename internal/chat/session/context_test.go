package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestContextCapsAtTen(t *testing.T) {
	c := NewContext()
	for i := 0; i < 13; i++ {
		c.Append(Exchange{UserMessage: fmt.Sprintf("msg-%d", i)})
	}

	if c.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", c.Len())
	}

	recent := c.Recent()
	if recent[0].UserMessage != "msg-3" || recent[9].UserMessage != "msg-12" {
		t.Errorf("window = [%s .. %s], want [msg-3 .. msg-12]", recent[0].UserMessage, recent[9].UserMessage)
	}
}

func TestContextConcurrentAppend(t *testing.T) {
	c := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Append(Exchange{UserMessage: fmt.Sprintf("msg-%d", n)})
			c.Recent()
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10", c.Len())
	}
}
