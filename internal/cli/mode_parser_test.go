package cli

import (
	"bytes"
	"flag"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantMode string
		wantRest []string
		wantErr  bool
	}{
		{"flag form", []string{"--mode=booking-service", "--max-concurrent=5"}, ModeBooking, []string{"--max-concurrent=5"}, false},
		{"alias flag", []string{"--mode=b"}, ModeBooking, nil, false},
		{"subcommand", []string{"booking", "--config=x.yaml"}, ModeBooking, []string{"--config=x.yaml"}, false},
		{"missing", []string{"--max-concurrent=5"}, "", []string{"--max-concurrent=5"}, true},
		{"unknown", []string{"--mode=payment-service"}, "", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
			if mode != tc.wantMode {
				t.Fatalf("expected mode %q, got %q", tc.wantMode, mode)
			}
			if strings.Join(rest, " ") != strings.Join(tc.wantRest, " ") {
				t.Fatalf("expected rest %v, got %v", tc.wantRest, rest)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	if !strings.Contains(buf.String(), "TABLE_NAME") {
		t.Fatalf("expected usage to mention TABLE_NAME")
	}

	fs := flag.NewFlagSet(ModeBooking, flag.ContinueOnError)
	fs.Int("max-concurrent", 1, "limit")
	var out bytes.Buffer
	fs.SetOutput(&out)
	AttachUsage(fs, ModeBooking)
	fs.Usage()
	if !strings.Contains(out.String(), "--mode=booking-service") || !strings.Contains(out.String(), "max-concurrent") {
		t.Fatalf("unexpected usage %q", out.String())
	}
}
