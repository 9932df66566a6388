package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	if err := ms.Set(ctx, "k1", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := ms.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want v1", got)
	}

	if err := ms.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ms.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Errorf("after delete: err = %v, want not found", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	if err := ms.Set(ctx, "k1", []byte("v1"), 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := ms.Get(ctx, "k1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, err := ms.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Errorf("after expiry: err = %v, want not found", err)
	}
}

func TestMemoryStore_BatchGet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	ms.Set(ctx, "a", []byte("1"))
	ms.Set(ctx, "b", []byte("2"))

	got, err := ms.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("BatchGet returned %d entries, want 2", len(got))
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet values wrong: %v", got)
	}
}

func TestMemoryStore_ZSet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	ms.ZAdd(ctx, "z", 1, "oldest")
	ms.ZAdd(ctx, "z", 3, "newest")
	ms.ZAdd(ctx, "z", 2, "middle")

	// 降序，含两端
	got, err := ms.ZRange(ctx, "z", 0, 1)
	if err != nil {
		t.Fatalf("ZRange: %v", err)
	}
	if len(got) != 2 || got[0] != "newest" || got[1] != "middle" {
		t.Errorf("ZRange = %v, want [newest middle]", got)
	}

	// 负数 stop 表示到末尾
	all, _ := ms.ZRange(ctx, "z", 0, -1)
	if len(all) != 3 {
		t.Errorf("full range = %v, want 3 members", all)
	}

	// 不存在的 key 返回空
	if empty, _ := ms.ZRange(ctx, "nope", 0, -1); len(empty) != 0 {
		t.Errorf("missing key range = %v, want empty", empty)
	}
}
