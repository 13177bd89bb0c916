package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FileName = "RuBox.log"

	maxSizeMB  = 10
	maxAgeDays = 14
)

type Options struct {
	Debug   bool
	LogPath string
	// Console is where the human readable stream goes. Nil means stdout.
	Console zapcore.WriteSyncer
}

// New builds a logger that writes to the console and to a size-rotated file
// under opts.LogPath. An empty LogPath puts the file in the working directory.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stdout)
	}

	path := FilePath(opts.LogPath)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename: path,
		MaxSize:  maxSizeMB,
		MaxAge:   maxAgeDays,
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), console, level),
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), file, level),
	)

	return zap.New(core), nil
}

func FilePath(logPath string) string {
	if logPath == "" {
		return FileName
	}

	return filepath.Join(logPath, FileName)
}

// Nop is used by commands that only talk to a running daemon.
func Nop() *zap.Logger {
	return zap.NewNop()
}
