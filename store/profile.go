package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rushteam/feedkit/core"
)

const (
	profileKeyPrefix = "feedkit:profile:"
	clicksKeyPrefix  = "feedkit:clicks:"
)

// ProfileStore 是用户画像的存储适配器：画像存 JSON blob，
// 点击事件同时写入按时间戳排序的有序集合（时间线）。
type ProfileStore struct {
	Store core.Store

	// TTL 是画像 key 的过期秒数，0 表示不过期。
	TTL int
}

func NewProfileStore(s core.Store) *ProfileStore {
	return &ProfileStore{Store: s}
}

// Save 持久化画像。
func (ps *ProfileStore) Save(ctx context.Context, profile *core.UserProfile) error {
	if ps.Store == nil || profile == nil {
		return nil
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return ps.Store.Set(ctx, profileKeyPrefix+profile.UserID, data, ps.TTL)
}

// Load 读取画像；不存在时返回 (nil, nil)，调用方新建空画像。
func (ps *ProfileStore) Load(ctx context.Context, userID string) (*core.UserProfile, error) {
	if ps.Store == nil {
		return nil, nil
	}
	data, err := ps.Store.Get(ctx, profileKeyPrefix+userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var profile core.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &profile, nil
}

// RecordClick 将点击写入用户的时间线（score=点击时间戳）。
// 后端不支持有序集合时静默跳过，时间线是画像之外的旁路数据。
func (ps *ProfileStore) RecordClick(ctx context.Context, userID string, ev core.ClickEvent) error {
	kv, ok := ps.Store.(core.KeyValueStore)
	if !ok {
		return nil
	}
	ts := ev.ClickedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return kv.ZAdd(ctx, clicksKeyPrefix+userID, float64(ts.Unix()), ev.ArticleID)
}

// RecentClicks 按时间降序返回最近 n 条点击的文章 ID。
func (ps *ProfileStore) RecentClicks(ctx context.Context, userID string, n int64) ([]string, error) {
	kv, ok := ps.Store.(core.KeyValueStore)
	if !ok {
		return nil, core.ErrStoreNotSupported
	}
	if n <= 0 {
		n = 10
	}
	return kv.ZRange(ctx, clicksKeyPrefix+userID, 0, n-1)
}
