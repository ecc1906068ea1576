package config

import (
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// AppLogger 는 애플리케이션 전역에서 사용하는 최소 로거 인터페이스다.
type AppLogger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 구조화 로그를 위한 공통 필드 타입이다.
type Fields map[string]any

// Logger 는 전역 로거 인스턴스다.
// InitLogger 가 호출되지 않더라도 기본 info 레벨로 동작한다.
var Logger AppLogger = NewLogger("info")

// InitLogger 는 logging 설정으로 전역 로거를 다시 만든다.
func InitLogger(cfg LoggingConfig) {
	level := strings.ToLower(cfg.Level)
	if level == "" {
		level = "info"
	}
	Logger = NewLogger(level)
}

// NewLogger 는 주어진 레벨로 gookit/slog 기반 JSON 로거를 생성한다.
func NewLogger(level string) AppLogger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// InfoWithFields 는 post_id, run_id 같은 구조화 필드를 포함한 로그를 남긴다.
func InfoWithFields(msg string, fields Fields) {
	if lg, ok := Logger.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	Logger.Info(msg)
}

func WarnWithFields(msg string, fields Fields) {
	if lg, ok := Logger.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Warn(msg)
		return
	}
	Logger.Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	if lg, ok := Logger.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Error(msg)
		return
	}
	Logger.Error(msg)
}
