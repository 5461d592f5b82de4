package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type LogLevel uint8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger writes formatted lines through a buffered channel so callers on the
// per-message path never block on disk. When the buffer is full the line is
// dropped.
type Logger struct {
	level   LogLevel
	sinks   []io.Writer
	closer  io.Closer
	logChan chan string
	wg      sync.WaitGroup
}

func NewLogger(level LogLevel, path string, echoStderr bool) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	sinks := []io.Writer{file}
	if echoStderr {
		sinks = append(sinks, os.Stderr)
	}

	l := &Logger{
		level:   level,
		sinks:   sinks,
		closer:  file,
		logChan: make(chan string, 4096),
	}

	l.wg.Add(1)
	go l.worker()

	return l, nil
}

func (l *Logger) worker() {
	defer l.wg.Done()
	for line := range l.logChan {
		for _, sink := range l.sinks {
			io.WriteString(sink, line)
		}
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	line := fmt.Sprintf("[%s] [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05.000"),
		levelString(level),
		fmt.Sprintf(format, args...))

	select {
	case l.logChan <- line:
	default:
		// Full buffer: drop instead of blocking the message path.
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

func levelString(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l *Logger) Close() error {
	close(l.logChan)
	l.wg.Wait()
	return l.closer.Close()
}

var GlobalLogger *Logger

func InitGlobalLogger(level LogLevel, path string, echoStderr bool) error {
	logger, err := NewLogger(level, path, echoStderr)
	if err != nil {
		return err
	}
	GlobalLogger = logger
	return nil
}

func Debug(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Debug(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Info(format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Warn(format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Error(format, args...)
	}
}

func CloseGlobal() {
	if GlobalLogger != nil {
		GlobalLogger.Close()
		GlobalLogger = nil
	}
}
