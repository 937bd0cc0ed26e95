package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables supplying flag defaults.
const (
	envDict = "RICHACME_DICT"
	envLog  = "RICHACME_LOG"
)

// loadEnv reads $HOME/lib/richacme.env, when present, into the process
// environment. Variables already set win.
func loadEnv() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	err = godotenv.Load(filepath.Join(home, "lib", "richacme.env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// newLogger returns a logger writing to stderr when debug is set and to
// a rotated JSON file when logFile is not empty.
func newLogger(debug bool, logFile string) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	var cores []zapcore.Core
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // Megabytes
			MaxBackups: 3,
			MaxAge:     30, // Days
		}
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(rotator), level))
	}
	if debug {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zap.DebugLevel,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
