package logging_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"landing/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	l, err := logging.New(false)
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled by default")
	}

	l, err = logging.New(true)
	if err != nil {
		t.Fatal(err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled")
	}
}
