// Package logging 提供 configure 系列集成包使用的轻量日志接口与默认实现。
// 核心容器自身不打日志，所有失败都以错误形式返回给调用方。
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel 日志级别
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

// Logger 日志接口
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	Log(level LogLevel, msg string, fields ...Field)
	WithFields(fields ...Field) Logger
}

// consoleLogger 控制台日志实现
type consoleLogger struct {
	mu           *sync.Mutex
	out          io.Writer
	minimumLevel LogLevel
	fields       []Field
}

// NewLogger 创建一个默认的控制台 Logger。
func NewLogger() Logger {
	return NewLoggerWithOptions(os.Stderr, LogLevelInfo)
}

// NewLoggerWithOptions 创建指定输出与最低级别的控制台 Logger。
func NewLoggerWithOptions(out io.Writer, minimumLevel LogLevel) Logger {
	return &consoleLogger{
		mu:           &sync.Mutex{},
		out:          out,
		minimumLevel: minimumLevel,
	}
}

func (l *consoleLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *consoleLogger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *consoleLogger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *consoleLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *consoleLogger) Fatal(msg string, fields ...Field) {
	l.Log(LogLevelFatal, msg, fields...)
	os.Exit(1)
}

func (l *consoleLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level < l.minimumLevel {
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.out, "%s %s %s", time.Now().Format("2006-01-02 15:04:05"), level.String(), msg)
	for _, f := range all {
		fmt.Fprintf(l.out, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(l.out)
}

func (l *consoleLogger) WithFields(fields ...Field) Logger {
	return &consoleLogger{
		mu:           l.mu,
		out:          l.out,
		minimumLevel: l.minimumLevel,
		fields:       append(append([]Field(nil), l.fields...), fields...),
	}
}

// nopLogger 丢弃所有输出，用于测试和不需要日志的场合。
type nopLogger struct{}

// NewNopLogger 创建一个不输出任何内容的 Logger。
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field)           {}
func (nopLogger) Info(string, ...Field)            {}
func (nopLogger) Warn(string, ...Field)            {}
func (nopLogger) Error(string, ...Field)           {}
func (nopLogger) Fatal(string, ...Field)           {}
func (nopLogger) Log(LogLevel, string, ...Field)   {}
func (nopLogger) WithFields(...Field) Logger       { return nopLogger{} }
