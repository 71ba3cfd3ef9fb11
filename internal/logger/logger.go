// Package logger provides leveled, colorized console logging with a
// dated file mirror under logs/, in the idiom used throughout the
// reference codebase this module descends from.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	OffLevel
)

var (
	defaultLogger *Logger

	debugPrintf = color.New(color.FgCyan).SprintfFunc()
	infoPrintf  = color.New(color.FgGreen).SprintfFunc()
	warnPrintf  = color.New(color.FgYellow).SprintfFunc()
	errorPrintf = color.New(color.FgRed).SprintfFunc()
)

type Logger struct {
	logger *log.Logger
	file   *os.File
	level  Level
	mu     sync.Mutex
}

func init() {
	color.NoColor = false
	defaultLogger = NewLogger()
}

// NewLogger opens (creating if needed) logs/<today>.log and returns a
// Logger writing to both it and stdout.
func NewLogger() *Logger {
	if err := os.MkdirAll("logs", 0755); err != nil {
		panic(fmt.Sprintf("cannot create log directory: %v", err))
	}

	filename := filepath.Join("logs", fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintf("cannot open log file: %v", err))
	}

	multi := io.MultiWriter(os.Stdout, file)

	return &Logger{
		logger: log.New(multi, "", log.LstdFlags),
		file:   file,
		level:  InfoLevel,
	}
}

func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.logger = log.New(w, "", log.LstdFlags)

	if f, ok := w.(*os.File); !ok || (f != os.Stdout && f != os.Stderr) {
		color.NoColor = true
	}
}

func Debug(format string, v ...interface{}) {
	if defaultLogger.level <= DebugLevel {
		defaultLogger.logger.Print(debugPrintf("[DEBUG] "+format, v...))
	}
}

func Info(format string, v ...interface{}) {
	if defaultLogger.level <= InfoLevel {
		defaultLogger.logger.Print(infoPrintf("[INFO] "+format, v...))
	}
}

func Warn(format string, v ...interface{}) {
	if defaultLogger.level <= WarnLevel {
		defaultLogger.logger.Print(warnPrintf("[WARN] "+format, v...))
	}
}

func Error(format string, v ...interface{}) {
	if defaultLogger.level <= ErrorLevel {
		defaultLogger.logger.Print(errorPrintf("[ERROR] "+format, v...))
	}
}

func Close() {
	if defaultLogger.file != nil {
		defaultLogger.file.Close()
	}
}

// Room returns a helper that prefixes every line with the room under
// mutation. Nearly every log line the scheduler emits concerns one room;
// the reference logger had no such helper because its CRUD domain never
// needed one.
func Room(roomID string) RoomLogger {
	return RoomLogger{roomID: roomID}
}

// RoomLogger tags log lines with a room_id.
type RoomLogger struct {
	roomID string
}

func (r RoomLogger) Debug(format string, v ...interface{}) {
	Debug("room=%s "+format, append([]interface{}{r.roomID}, v...)...)
}

func (r RoomLogger) Info(format string, v ...interface{}) {
	Info("room=%s "+format, append([]interface{}{r.roomID}, v...)...)
}

func (r RoomLogger) Warn(format string, v ...interface{}) {
	Warn("room=%s "+format, append([]interface{}{r.roomID}, v...)...)
}

func (r RoomLogger) Error(format string, v ...interface{}) {
	Error("room=%s "+format, append([]interface{}{r.roomID}, v...)...)
}
