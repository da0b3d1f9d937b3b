package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"debtpilot/internal/core"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisCache[core.SimulationResult], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache[core.SimulationResult](client, "debtpilot:", ttl), mr
}

func sampleResult() core.SimulationResult {
	return core.SimulationResult{
		Strategy:          core.Avalanche,
		MonthsToPayoff:    2,
		TotalInterestPaid: decimal.RequireFromString("12.34"),
		Timeline: []core.MonthlySnapshot{
			{Month: 1, Debts: []core.DebtBalance{{Name: "Visa", Balance: decimal.RequireFromString("600.5")}}, TotalBalance: decimal.RequireFromString("600.5")},
			{Month: 2, Debts: []core.DebtBalance{{Name: "Visa", Balance: decimal.Zero}}, TotalBalance: decimal.Zero},
		},
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	c.Set("k", sampleResult())

	if !mr.Exists("debtpilot:k") {
		t.Fatalf("expected prefixed key, have %v", mr.Keys())
	}
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if !got.TotalInterestPaid.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("interest %s", got.TotalInterestPaid)
	}
	if got.Strategy != core.Avalanche || got.MonthsToPayoff != 2 || len(got.Timeline) != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
	if !got.Timeline[0].Debts[0].Balance.Equal(decimal.RequireFromString("600.50")) {
		t.Fatalf("balance %s", got.Timeline[0].Debts[0].Balance)
	}
}

func TestRedisCacheSizeAndDelete(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	c.Set("a", sampleResult())
	c.Set("b", sampleResult())
	mr.Set("other:c", "ignored")

	if c.Size() != 2 {
		t.Fatalf("size %d want 2", c.Size())
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}
	if c.Size() != 1 {
		t.Fatalf("size %d want 1", c.Size())
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ttl := 30 * time.Second
	c, mr := newTestRedisCache(t, ttl)
	c.Set("k", sampleResult())

	if d := mr.TTL("debtpilot:k"); d != ttl {
		t.Fatalf("ttl %s want %s", d, ttl)
	}
	mr.FastForward(ttl + time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestRedisCacheMisses(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}

	mr.Set("debtpilot:bad", "not json")
	if _, ok := c.Get("bad"); ok {
		t.Fatal("undecodable entry must be a miss")
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	mr.Close()

	c.Set("k", sampleResult())
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss while redis is down")
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	client.Close()

	mr.Close()
	if _, err := NewRedisClient(context.Background(), mr.Addr(), "", 0); err == nil {
		t.Fatal("expected ping failure")
	}
}
