package logger

import (
	"bufio"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
	GetLogs(level string, limit, offset int) ([]LogEntry, error)
	GetLogById(id string) (*LogEntry, error)
}

type ZapLogger struct {
	logger   *zap.Logger
	filePath string
}

// fileCore writes JSON lines to a rotated file. The admin log viewer reads the same format back.
func fileCore(logFilePath string) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(rotator), zap.InfoLevel)
}

func newZapLogger(logFilePath string, cores ...zapcore.Core) *ZapLogger {
	return &ZapLogger{
		logger:   zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)),
		filePath: logFilePath,
	}
}

// NewZapLogger writes to the log file and mirrors everything to stdout.
// Outside production stdout gets the human readable console encoding.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoder := zapcore.NewConsoleEncoder(consoleCfg)
	if isProd {
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	console := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel)

	return newZapLogger(logFilePath, fileCore(logFilePath), console)
}

// NewFileLogger writes only to the log file.
func NewFileLogger(logFilePath string) *ZapLogger {
	return newZapLogger(logFilePath, fileCore(logFilePath))
}

// NewNopLogger discards everything. GetLogs always returns an empty list.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if err, ok := details["error"]; ok && level >= zapcore.ErrorLevel {
		fields = append(fields, zap.Any("error_ref", err))
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zapcore.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zapcore.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zapcore.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zapcore.ErrorLevel, module, message, details)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// LogEntry is one line of the log file as shown in the admin log viewer.
type LogEntry struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// scan visits every parseable entry of the active log file in write order.
// Entries without an id are keyed by the hash of their raw line.
func (l *ZapLogger) scan(visit func(LogEntry)) error {
	if l.filePath == "" {
		return nil
	}
	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Id == "" {
			entry.Id = fmt.Sprintf("%x", md5.Sum(line))
		}
		visit(entry)
	}
	return scanner.Err()
}

// GetLogs returns entries newest first, optionally restricted to one level.
func (l *ZapLogger) GetLogs(level string, limit, offset int) ([]LogEntry, error) {
	var entries []LogEntry
	err := l.scan(func(e LogEntry) {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	})
	if err != nil {
		return nil, err
	}

	newest := len(entries) - 1 - offset
	if newest < 0 {
		return []LogEntry{}, nil
	}
	page := make([]LogEntry, 0, limit)
	for i := newest; i >= 0 && len(page) < limit; i-- {
		page = append(page, entries[i])
	}
	return page, nil
}

// GetLogById returns nil when no entry has the id.
func (l *ZapLogger) GetLogById(id string) (*LogEntry, error) {
	var found *LogEntry
	err := l.scan(func(e LogEntry) {
		if found == nil && e.Id == id {
			entry := e
			found = &entry
		}
	})
	return found, err
}
