// Package audit файловые журналы запросов: JSON-аудит и человекочитаемый журнал администратора.
package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	timeLayout     = "2006-01-02 15:04:05"
	userAgentLimit = 200
)

// Entry одна запись о выполненном запросе.
type Entry struct {
	Time      time.Time
	IP        string
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	UserAgent string
}

// Logger пишет каждый запрос в оба журнала.
type Logger struct {
	audit     *zap.Logger
	admin     *zap.Logger
	auditPath string
	adminPath string
	files     []*os.File
}

// Open открывает журналы. Журнал администратора обрезается при каждом запуске, аудит дописывается.
func Open(auditPath, adminPath string) (*Logger, error) {
	auditFile, err := openFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	adminFile, err := openFile(adminPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_TRUNC)
	if err != nil {
		_ = auditFile.Close()
		return nil, fmt.Errorf("open admin log: %w", err)
	}

	auditEnc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:    "time",
		EncodeTime: zapcore.TimeEncoderOfLayout(timeLayout),
	})
	adminEnc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
	})

	return &Logger{
		audit:     zap.New(zapcore.NewCore(auditEnc, zapcore.AddSync(auditFile), zapcore.InfoLevel)),
		admin:     zap.New(zapcore.NewCore(adminEnc, zapcore.AddSync(adminFile), zapcore.InfoLevel)),
		auditPath: auditPath,
		adminPath: adminPath,
		files:     []*os.File{auditFile, adminFile},
	}, nil
}

func openFile(path string, flag int) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, flag, 0o644)
}

// Record пишет запись. Ошибки записи не возвращаются: журнал не должен ломать запрос.
func (l *Logger) Record(e Entry) {
	if l == nil {
		return
	}
	ua := truncate(e.UserAgent, userAgentLimit)
	ms := e.Duration.Milliseconds()

	if ce := l.audit.Check(zapcore.InfoLevel, ""); ce != nil {
		ce.Time = e.Time
		ce.Write(
			zap.String("ip", e.IP),
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.Int("status", e.Status),
			zap.Int64("duration_ms", ms),
			zap.String("user_agent", ua),
		)
	}
	l.admin.Info(fmt.Sprintf("[%s] %s %s -> %d (%dms)",
		e.Time.Format(timeLayout), e.Method, e.Path, e.Status, ms))
}

// AuditLines строки JSON-журнала.
func (l *Logger) AuditLines() ([]string, error) {
	return readLines(l.auditPath)
}

// AdminLines строки журнала администратора.
func (l *Logger) AdminLines() ([]string, error) {
	return readLines(l.adminPath)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// Close сбрасывает буферы и закрывает файлы.
func (l *Logger) Close() error {
	_ = l.audit.Sync()
	_ = l.admin.Sync()
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// truncate обрезает s до n байт, не разрывая UTF-8 последовательность.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
