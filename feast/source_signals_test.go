package feast

import (
	"context"
	"testing"

	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// TestSourceSignalProvider_SourceSignals 需要连接真实的 Feast 服务器才能运行
func TestSourceSignalProvider_SourceSignals(t *testing.T) {
	t.Skip("需要连接真实的 Feast 服务器才能运行")

	p, err := NewSourceSignalProvider("localhost", 6565, "news")
	if err != nil {
		t.Fatalf("创建客户端失败: %v", err)
	}
	defer p.Close()

	rep, auth, err := p.SourceSignals(context.Background(), "reuters")
	if err != nil {
		t.Fatalf("获取来源特征失败: %v", err)
	}
	if rep < 0 || rep > 1 || auth < 0 || auth > 1 {
		t.Errorf("signals out of range: rep=%v auth=%v", rep, auth)
	}
}

func TestFloatValue(t *testing.T) {
	tests := []struct {
		name   string
		in     *types.Value
		want   float64
		wantOK bool
	}{
		{"double", &types.Value{Val: &types.Value_DoubleVal{DoubleVal: 0.8}}, 0.8, true},
		{"float", &types.Value{Val: &types.Value_FloatVal{FloatVal: 0.5}}, 0.5, true},
		{"int64", &types.Value{Val: &types.Value_Int64Val{Int64Val: 1}}, 1, true},
		{"string not numeric", &types.Value{Val: &types.Value_StringVal{StringVal: "x"}}, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := floatValue(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("floatValue = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSourceSignals_EmptySourceName(t *testing.T) {
	p := &SourceSignalProvider{}
	if _, _, err := p.SourceSignals(context.Background(), ""); err == nil {
		t.Error("empty source name should error")
	}
}
