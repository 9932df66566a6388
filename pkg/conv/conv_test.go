package conv

import "testing"

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{3.14, 3.14, true},
		{float32(2), 2, true},
		{int(5), 5, true},
		{int64(7), 7, true},
		{true, 1.0, true},
		{false, 0.0, true},
		{"nope", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ToFloat64(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToInt(t *testing.T) {
	if got, ok := ToInt(int64(9)); !ok || got != 9 {
		t.Errorf("ToInt(int64) = %v, %v", got, ok)
	}
	if got, ok := ToInt(2.9); !ok || got != 2 {
		t.Errorf("ToInt(float64) = %v, %v", got, ok)
	}
	if _, ok := ToInt("x"); ok {
		t.Error("ToInt(string) should fail")
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"name": "redis", "size": 10}
	if got := ConfigGet(m, "name", "default"); got != "redis" {
		t.Errorf("ConfigGet = %v", got)
	}
	if got := ConfigGet(m, "missing", "default"); got != "default" {
		t.Errorf("ConfigGet missing = %v", got)
	}
	// 类型不符回退默认值
	if got := ConfigGet(m, "size", "default"); got != "default" {
		t.Errorf("ConfigGet type mismatch = %v", got)
	}
}

func TestSliceAnyToString(t *testing.T) {
	got := SliceAnyToString([]any{"a", 1, "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("SliceAnyToString = %v", got)
	}
	if got := SliceAnyToString("not a slice"); got != nil {
		t.Errorf("non-slice input = %v, want nil", got)
	}
}
