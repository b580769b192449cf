package tlog

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func saveLoggerState() (io.Writer, logrus.Level, logrus.Formatter) {
	return Logger.Out, Logger.Level, Logger.Formatter
}

func restoreLoggerState(out io.Writer, level logrus.Level, formatter logrus.Formatter) {
	Logger.SetOutput(out)
	Logger.SetLevel(level)
	Logger.SetFormatter(formatter)
}

func TestSetLevel(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"invalid", true},
	}
	for _, tt := range tests {
		if err := SetLevel(tt.level); (err != nil) != tt.wantErr {
			t.Errorf("SetLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
		}
	}
}

func TestSetOutputAndLevels(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("debug")

	Debug("debug msg")
	Infof("info %d", 1)
	Warn("warn msg")
	Errorf("error %s", "msg")

	if buf.Len() == 0 {
		t.Error("expected log output")
	}
}

func TestSetJSON(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetOutput(&buf)
	SetJSON()
	Info("json message")

	output := buf.String()
	if len(output) == 0 || output[0] != '{' {
		t.Errorf("expected JSON output starting with '{', got: %s", output)
	}
}

func TestWithHelpers(t *testing.T) {
	if WithField("k", "v") == nil {
		t.Error("WithField returned nil")
	}
	if WithFields(map[string]interface{}{"a": 1}) == nil {
		t.Error("WithFields returned nil")
	}
	if WithASIC(3) == nil {
		t.Error("WithASIC returned nil")
	}
	if WithLayout("mesh") == nil {
		t.Error("WithLayout returned nil")
	}
	if WithOperation("discover") == nil {
		t.Error("WithOperation returned nil")
	}
}
