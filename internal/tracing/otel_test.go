package tracing

import "testing"

func TestNormalizeJaegerCollector(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "http://localhost:14268/api/traces"},
		{"jaeger", "http://jaeger/api/traces"},
		{"jaeger:14268", "http://jaeger:14268/api/traces"},
		{"https://collector.example.com/", "https://collector.example.com/api/traces"},
		{"http://jaeger:14268/api/traces", "http://jaeger:14268/api/traces"},
	}

	for _, tt := range tests {
		if got := normalizeJaegerCollector(tt.in); got != tt.want {
			t.Errorf("normalizeJaegerCollector(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
