package compression

import (
	"testing"

	"github.com/42Wor/Compress-image-M-dev/codec"
)

func TestParseTargetSize(t *testing.T) {
	tests := []struct {
		amount  string
		unit    string
		want    int64
		wantErr bool
	}{
		{amount: "", want: 0},
		{amount: "  ", unit: "kb", want: 0},
		{amount: "1", want: 1024 * 1024},
		{amount: "0.5", unit: "MB", want: 512 * 1024},
		{amount: "200", unit: "kb", want: 200 * 1024},
		{amount: "1500", unit: "b", want: 1500},
		{amount: "0.1", unit: "b", wantErr: true},
		{amount: "0", wantErr: true},
		{amount: "-3", wantErr: true},
		{amount: "NaN", wantErr: true},
		{amount: "Inf", wantErr: true},
		{amount: "1e300", unit: "mb", wantErr: true},
		{amount: "ten", wantErr: true},
		{amount: "1", unit: "tb", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.amount+tt.unit, func(t *testing.T) {
			got, err := parseTargetSize(tt.amount, tt.unit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTargetSize(%q, %q) error = %v, wantErr %v", tt.amount, tt.unit, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseTargetSize(%q, %q) = %d, want %d", tt.amount, tt.unit, got, tt.want)
			}
		})
	}
}

func TestParseQuality(t *testing.T) {
	if q, err := parseQuality("", 75); q != 75 || err != nil {
		t.Errorf("Expected default 75, got %d, %v", q, err)
	}
	if q, err := parseQuality(" 1 ", 75); q != 1 || err != nil {
		t.Errorf("Expected 1, got %d, %v", q, err)
	}
	for _, bad := range []string{"0", "101", "7.5", "max"} {
		if _, err := parseQuality(bad, 75); err != errInvalidQuality {
			t.Errorf("parseQuality(%q): expected errInvalidQuality, got %v", bad, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	registry := codec.NewRegistry(&codec.JPEGEncoder{})

	if f, err := parseFormat("", registry); f != codec.FormatAuto || err != nil {
		t.Errorf("Expected auto for empty value, got %s, %v", f, err)
	}
	if f, err := parseFormat("JPG", registry); f != codec.FormatJPEG || err != nil {
		t.Errorf("Expected jpeg, got %s, %v", f, err)
	}
	if _, err := parseFormat("png", registry); err != errInvalidFormat {
		t.Errorf("Expected unregistered png to be rejected, got %v", err)
	}
}
