package metadata

import "testing"

func TestConvertTimestamp(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"2019:07:21 14:03:55", "2019-07-21 14:03:55", false},
		{"2001:01:01 00:00:00", "2001-01-01 00:00:00", false},
		{"2019-07-21 14:03:55", "", true},
		{"not a timestamp", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ConvertTimestamp(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ConvertTimestamp(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ConvertTimestamp(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
