package rank

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/store"
)

// UpdateUserProfile 用一次点击事件做画像的在线更新：
// 来源/话题偏好按 EMA(α=0.1) 上调，时段桶 +0.1，点击历史 FIFO 截断到 1000。
func (e *Engine) UpdateUserProfile(ev core.ClickEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile.RecordClick(ev, core.DefaultEMAAlpha)
}

// Profile 返回当前画像（供管线做健康检查与持久化）。
func (e *Engine) Profile() *core.UserProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// SaveProfile 将当前画像持久化到给定存储。
func (e *Engine) SaveProfile(ctx context.Context, ps *store.ProfileStore) error {
	if ps == nil {
		return nil
	}
	e.mu.Lock()
	profile := e.profile
	e.mu.Unlock()
	return ps.Save(ctx, profile)
}
