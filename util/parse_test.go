package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1MB", 1 << 20},
		{"512KB", 512 << 10},
		{"2GB", 2 << 30},
		{"1024", 1024},
		{"64B", 64},
		{"  10mb  ", 10 << 20},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSize(tc.input)
			if err != nil || got != tc.want {
				t.Errorf("ParseSize(%q) = %d, %v; want %d", tc.input, got, err, tc.want)
			}
		})
	}
}

func TestParseSize_Invalid(t *testing.T) {
	for _, s := range []string{"", "big", "-1KB", "1.5MB"} {
		if _, err := ParseSize(s); err == nil {
			t.Errorf("ParseSize(%q): expected error", s)
		}
	}
	if got := SizeOr("invalid", 42); got != 42 {
		t.Errorf("expected fallback 42, got %d", got)
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"postgres://auth:hunter2@db:5432/authgate?sslmode=disable", "postgres://auth:xxxxx@db:5432/authgate?sslmode=disable"},
		{"host=db user=auth password=hunter2 dbname=authgate", "host=db user=auth password=*** dbname=authgate"},
		{"host=db password='two words' dbname=x", "host=db password=*** dbname=x"},
		{"/var/lib/authgate/credentials.db", "/var/lib/authgate/credentials.db"},
		{"postgres://db/authgate", "postgres://db/authgate"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := MaskDSN(tc.input); got != tc.want {
				t.Errorf("MaskDSN(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
