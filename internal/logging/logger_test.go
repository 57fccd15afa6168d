package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"WARN":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.InfoLevel,
		"bogus": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewTagsService(t *testing.T) {
	entry := New("peco", "debug")
	if entry.Data["service"] != "peco" {
		t.Fatalf("expected service field, got %+v", entry.Data)
	}
	if entry.Logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", entry.Logger.GetLevel())
	}
}
