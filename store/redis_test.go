package store

import (
	"context"
	"testing"
)

// TestRedisStore 需要连接真实的 Redis 才能运行
func TestRedisStore(t *testing.T) {
	t.Skip("需要连接真实的 Redis 才能运行")

	rs, err := NewRedisStore("localhost:6379", 0)
	if err != nil {
		t.Fatalf("连接 Redis 失败: %v", err)
	}
	defer rs.Close()

	ctx := context.Background()
	if err := rs.Set(ctx, "feedkit:test:k", []byte("v"), 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := rs.Get(ctx, "feedkit:test:k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	rs.Delete(ctx, "feedkit:test:k")
}
