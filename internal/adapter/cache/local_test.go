package cache

import (
	"testing"

	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/ports"
)

func TestRunCacheUsableThroughPort(t *testing.T) {
	var c ports.ResultCache = NewRunCache(zap.NewNop())

	c.Put("run-1", "room-1", &domain.SpaceResult{SpaceID: "room-1"})
	if _, ok := c.Get("run-1", "room-1"); !ok {
		t.Fatal("stored result not found through the port")
	}
	c.DropRun("run-1")
	if _, ok := c.Get("run-1", "room-1"); ok {
		t.Fatal("dropped run still present")
	}
}

func TestRunCachePutGet(t *testing.T) {
	c := NewRunCache(zap.NewNop())

	if _, ok := c.Get("run-1", "room-1"); ok {
		t.Fatal("empty cache must miss")
	}

	sr := &domain.SpaceResult{SpaceID: "room-1"}
	c.Put("run-1", "room-1", sr)

	got, ok := c.Get("run-1", "room-1")
	if !ok || got != sr {
		t.Fatalf("Get = %v, %v; want the stored result", got, ok)
	}

	// same space in another run is a separate entry
	if _, ok := c.Get("run-2", "room-1"); ok {
		t.Error("results must be scoped per run")
	}
}

func TestRunCacheFirstWriteWins(t *testing.T) {
	c := NewRunCache(zap.NewNop())

	first := &domain.SpaceResult{SpaceID: "room-1"}
	second := &domain.SpaceResult{SpaceID: "room-1"}
	c.Put("run-1", "room-1", first)
	c.Put("run-1", "room-1", second)

	got, _ := c.Get("run-1", "room-1")
	if got != first {
		t.Fatal("duplicate write must not replace the first result")
	}
}

func TestRunCacheDropRun(t *testing.T) {
	c := NewRunCache(zap.NewNop())
	c.Put("run-1", "room-1", &domain.SpaceResult{SpaceID: "room-1"})
	c.Put("run-1", "room-2", &domain.SpaceResult{SpaceID: "room-2"})
	c.Put("run-2", "room-1", &domain.SpaceResult{SpaceID: "room-1"})

	c.DropRun("run-1")

	if _, ok := c.Get("run-1", "room-1"); ok {
		t.Error("run-1 entries should be gone")
	}
	if _, ok := c.Get("run-1", "room-2"); ok {
		t.Error("run-1 entries should be gone")
	}
	if _, ok := c.Get("run-2", "room-1"); !ok {
		t.Error("other runs must survive")
	}
}
