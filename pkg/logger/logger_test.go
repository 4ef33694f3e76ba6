package logger

import "testing"

func TestNamespaceEnabled(t *testing.T) {
	tests := []struct {
		namespace string
		debug     string
		want      bool
	}{
		{"cli:monitor", "", false},
		{"cli:monitor", "1", true},
		{"cli:monitor", "*", true},
		{"cli:monitor", "cli:monitor", true},
		{"cli:monitor", "cli:*", true},
		{"cli:monitor", "ghcli:*", false},
		{"cli:monitor", "ghcli:*,cli:monitor", true},
		{"cli:monitor", " cli:monitor ", true},
		{"cli:monitor", "cli", false},
	}

	for _, tt := range tests {
		if got := namespaceEnabled(tt.namespace, tt.debug); got != tt.want {
			t.Errorf("namespaceEnabled(%q, %q) = %v, want %v", tt.namespace, tt.debug, got, tt.want)
		}
	}
}
