package ddblog

import "testing"

func TestLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		Debug: "DEBUG",
		Info:  "INFO",
		Warn:  "WARN",
		Error: "ERROR",
		Fatal: "FATAL",
		LogLevel(99): "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": Debug,
		"DEBUG": Debug,
		"warn":  Warn,
		"ERROR": Error,
		"fatal": Fatal,
		"bogus": Info,
		"":      Info,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}
