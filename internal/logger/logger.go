package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init builds the process logger for env and installs it as the zap global.
// Development gets the console encoder, everything else JSON.
func Init(env, lvl string) error {
	SetLevel(lvl)

	zc := zap.NewProductionConfig()
	if env == "development" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("zc.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the running logger. Unknown levels fall back to info.
func SetLevel(lvl string) {
	parsed := zapcore.InfoLevel
	if err := parsed.Set(strings.ToLower(lvl)); err != nil {
		parsed = zapcore.InfoLevel
	}

	level.SetLevel(parsed)
}

func Level() zapcore.Level {
	return level.Level()
}
