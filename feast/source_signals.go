// Package feast 对接 Feast 在线特征库，为富化阶段提供来源级特征
// （声誉/权威度）。实现 enrich.SignalProvider。
package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/enrich"
)

const (
	defaultReputationFeature = "source_stats:reputation"
	defaultAuthorityFeature  = "source_stats:authority"
	entitySourceName         = "source_name"
)

// SourceSignalProvider 通过 Feast gRPC 在线接口按来源名取特征。
// 特征缺失时返回 NOT_FOUND 领域错误，调用方回退内置声誉表。
type SourceSignalProvider struct {
	client  *feastsdk.GrpcClient
	project string

	// ReputationFeature / AuthorityFeature 可覆盖默认特征名。
	ReputationFeature string
	AuthorityFeature  string
}

// NewSourceSignalProvider 连接 Feast Feature Server。
// port 为 0 时使用默认 gRPC 端口 6565。
func NewSourceSignalProvider(host string, port int, project string) (*SourceSignalProvider, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("connect feast %s:%d: %w", host, port, err)
	}
	return &SourceSignalProvider{
		client:            client,
		project:           project,
		ReputationFeature: defaultReputationFeature,
		AuthorityFeature:  defaultAuthorityFeature,
	}, nil
}

// SourceSignals 返回来源的声誉与权威度（0-1）。
func (p *SourceSignalProvider) SourceSignals(ctx context.Context, sourceName string) (float64, float64, error) {
	if sourceName == "" {
		return 0, 0, core.NewDomainError(core.ModuleFeast, core.ErrorCodeNotFound, "empty source name")
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{p.reputationFeature(), p.authorityFeature()},
		Entities: []feastsdk.Row{
			{entitySourceName: feastsdk.StrVal(sourceName)},
		},
		Project: p.project,
	}

	resp, err := p.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return 0, 0, core.NewDomainError(core.ModuleFeast, core.ErrorCodeNotFound, "no feature row for source "+sourceName)
	}

	reputation, okR := floatValue(rows[0][p.reputationFeature()])
	authority, okA := floatValue(rows[0][p.authorityFeature()])
	if !okR && !okA {
		return 0, 0, core.NewDomainError(core.ModuleFeast, core.ErrorCodeNotFound, "features missing for source "+sourceName)
	}
	if !okR {
		reputation = authority
	}
	if !okA {
		authority = reputation * 0.9
	}
	return reputation, authority, nil
}

func (p *SourceSignalProvider) reputationFeature() string {
	if p.ReputationFeature != "" {
		return p.ReputationFeature
	}
	return defaultReputationFeature
}

func (p *SourceSignalProvider) authorityFeature() string {
	if p.AuthorityFeature != "" {
		return p.AuthorityFeature
	}
	return defaultAuthorityFeature
}

// floatValue 从 Feast 值中提取数值特征。
func floatValue(v *types.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.Val.(type) {
	case *types.Value_DoubleVal:
		return val.DoubleVal, true
	case *types.Value_FloatVal:
		return float64(val.FloatVal), true
	case *types.Value_Int64Val:
		return float64(val.Int64Val), true
	case *types.Value_Int32Val:
		return float64(val.Int32Val), true
	default:
		return 0, false
	}
}

func (p *SourceSignalProvider) Close() error {
	// 官方 SDK 未暴露显式关闭，连接由 gRPC 库托管
	p.client = nil
	return nil
}

// 确保实现了富化阶段的特征提供方接口
var _ enrich.SignalProvider = (*SourceSignalProvider)(nil)
