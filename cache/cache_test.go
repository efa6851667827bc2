package cache

import (
	"fmt"
	"testing"

	"github.com/use-agent/solvewatch/models"
)

func testResponse(platform models.PlatformID) *models.ClassifyResponse {
	return &models.ClassifyResponse{
		Success: true,
		Classification: models.PageClassification{
			Platform:      platform,
			IsProblemPage: true,
		},
	}
}

func TestKey(t *testing.T) {
	k1 := Key("https://leetcode.com/problems/two-sum/", true)
	k2 := Key("https://leetcode.com/problems/two-sum/", true)
	if k1 != k2 {
		t.Error("same inputs should produce the same key")
	}

	k3 := Key("https://leetcode.com/problems/two-sum/", false)
	if k1 == k3 {
		t.Error("metadata and classification-only responses must not share a key")
	}

	k4 := Key("https://leetcode.com/problems/add-two-numbers/", true)
	if k1 == k4 {
		t.Error("different URLs must not share a key")
	}
}

func TestGetSet(t *testing.T) {
	c := New(10)
	key := Key("https://leetcode.com/problems/two-sum/", true)

	if _, hit := c.Get(key, 60000); hit {
		t.Error("empty cache should miss")
	}

	c.Set(key, testResponse(models.PlatformLeetCode))

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("stored entry should hit")
	}
	if got.Classification.Platform != models.PlatformLeetCode {
		t.Errorf("platform = %q, want leetcode", got.Classification.Platform)
	}
}

func TestGet_ZeroMaxAgeDisablesLookup(t *testing.T) {
	c := New(10)
	key := Key("https://leetcode.com/problems/two-sum/", false)
	c.Set(key, testResponse(models.PlatformLeetCode))

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must disable lookup")
	}
	if _, hit := c.Get(key, -1); hit {
		t.Error("negative maxAge must disable lookup")
	}
}

func TestGet_Expiry(t *testing.T) {
	c := New(10)
	key := Key("https://codeforces.com/problemset/problem/1/A", false)
	c.Set(key, testResponse(models.PlatformCodeforces))

	if _, hit := c.Get(key, 60000); !hit {
		t.Error("fresh entry inside a 60s window should hit")
	}
}

func TestGetSet_Isolation(t *testing.T) {
	c := New(10)
	key := Key("https://leetcode.com/problems/two-sum/", true)

	resp := testResponse(models.PlatformLeetCode)
	c.Set(key, resp)

	// Caller-side mutation after Set must not reach the stored entry.
	resp.CacheStatus = "miss"
	resp.Timing.TotalMs = 42

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("stored entry should hit")
	}
	if got.CacheStatus != "" || got.Timing.TotalMs != 0 {
		t.Errorf("stored entry shares fields with the caller's response: %+v", got)
	}

	// Hit-side stamping must not reach the stored entry either.
	got.CacheStatus = "hit"
	got.Timing.TotalMs = 7

	again, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("entry should still hit")
	}
	if again.CacheStatus != "" || again.Timing.TotalMs != 0 {
		t.Errorf("stored entry shares fields with a previous hit: %+v", again)
	}
}

func TestSet_EvictsAtCapacity(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.Set(Key(fmt.Sprintf("https://example.com/%d", i), false), testResponse(models.PlatformNone))
	}

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()

	if size > 3 {
		t.Errorf("cache grew past capacity: %d entries", size)
	}
}

func TestSet_Overwrite(t *testing.T) {
	c := New(10)
	key := Key("https://leetcode.com/problems/two-sum/", true)

	c.Set(key, testResponse(models.PlatformLeetCode))
	c.Set(key, testResponse(models.PlatformCodeforces))

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("overwritten entry should hit")
	}
	if got.Classification.Platform != models.PlatformCodeforces {
		t.Errorf("expected the newer response, got %q", got.Classification.Platform)
	}
}
