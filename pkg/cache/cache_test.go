package cache

import (
	"testing"

	"github.com/hollowcube/mql/pkg/parser"
	"github.com/hollowcube/mql/pkg/types"
)

func TestCacheGetSetRoundTrip(t *testing.T) {
	c := New(4)
	if _, ok := c.Get("1 + 1"); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	script, err := parser.Parse("1 + 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	c.Set("1 + 1", script)
	got, ok := c.Get("1 + 1")
	if !ok || got != script {
		t.Fatalf("expected the same *types.Script back, got %v, %v", got, ok)
	}
}

func TestCacheGetOrParseOnlyParsesOnce(t *testing.T) {
	c := New(4)
	calls := 0
	parse := func(src string) (*types.Script, error) {
		calls++
		return parser.Parse(src)
	}
	first, err := c.GetOrParse("math.sqrt(4)", parse)
	if err != nil {
		t.Fatalf("GetOrParse failed: %v", err)
	}
	second, err := c.GetOrParse("math.sqrt(4)", parse)
	if err != nil {
		t.Fatalf("GetOrParse failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected parse to run once, ran %d times", calls)
	}
	if first != second {
		t.Fatalf("expected the cached script to be returned on the second call")
	}
}

func TestCacheGetOrParseDoesNotCacheErrors(t *testing.T) {
	c := New(4)
	calls := 0
	parse := func(src string) (*types.Script, error) {
		calls++
		return parser.Parse(src)
	}
	if _, err := c.GetOrParse("(", parse); err == nil {
		t.Fatal("expected a parse error for unclosed paren")
	}
	if _, err := c.GetOrParse("(", parse); err == nil {
		t.Fatal("expected a parse error again on the second attempt")
	}
	if calls != 2 {
		t.Fatalf("expected parse to be retried after a failure, ran %d times", calls)
	}
	if c.Len() != 0 {
		t.Fatalf("expected no entries cached after repeated failures, got %d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	a, _ := parser.Parse("1")
	b, _ := parser.Parse("2")
	d, _ := parser.Parse("3")
	c.Set("a", a)
	c.Set("b", b)
	// touch "a" so "b" becomes the least recently used entry.
	c.Get("a")
	c.Set("d", d)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected \"b\" to have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected \"a\" to survive eviction")
	}
	if _, ok := c.Get("d"); !ok {
		t.Fatal("expected \"d\" to be present")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := New(4)
	a, _ := parser.Parse("1")
	b, _ := parser.Parse("2")
	c.Set("a", a)
	c.Set("b", b)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected \"a\" to be gone after Invalidate")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected \"b\" to remain after invalidating \"a\"")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected an empty cache after Clear, got %d entries", c.Len())
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := New(0)
	if c.Capacity() != 256 {
		t.Fatalf("expected default capacity 256, got %d", c.Capacity())
	}
	negative := New(-5)
	if negative.Capacity() != 256 {
		t.Fatalf("expected default capacity 256 for a negative request, got %d", negative.Capacity())
	}
}
