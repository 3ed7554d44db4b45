package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ETLLogger представляет логгер для ETL-процесса
type ETLLogger struct {
	sugar     *zap.SugaredLogger
	base      *zap.Logger
	isVerbose bool
}

// NewETLLogger создает логгер, который пишет в консоль и в ежедневный файл в logDir.
// При пустом logDir пишет только в консоль.
func NewETLLogger(verbose bool, logDir string) (*ETLLogger, error) {
	level := levelFor(verbose)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(os.Stdout), level),
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог логов %s: %w", logDir, err)
		}
		// Создаем или открываем лог-файл на текущий день
		file, err := rotatelogs.New(
			filepath.Join(logDir, "etl_log_%Y-%m-%d.log"),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithMaxAge(30*24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return newETLLogger(base, verbose), nil
}

// NewLoggerWithWriter создает JSON-логгер с произвольным приемником, удобно для тестов
func NewLoggerWithWriter(w io.Writer, verbose bool) *ETLLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), levelFor(verbose))
	return newETLLogger(zap.New(core), verbose)
}

// NewNopLogger создает логгер, который ничего не пишет
func NewNopLogger() *ETLLogger {
	return newETLLogger(zap.NewNop(), false)
}

func newETLLogger(base *zap.Logger, verbose bool) *ETLLogger {
	return &ETLLogger{
		sugar:     base.Sugar(),
		base:      base,
		isVerbose: verbose,
	}
}

func levelFor(verbose bool) zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Zap возвращает нижележащий zap.Logger для компонентов, которые логируют полями
func (l *ETLLogger) Zap() *zap.Logger {
	return l.base
}

// With возвращает логгер с дополнительными полями
func (l *ETLLogger) With(keysAndValues ...interface{}) *ETLLogger {
	sugar := l.sugar.With(keysAndValues...)
	return &ETLLogger{
		sugar:     sugar,
		base:      sugar.Desugar(),
		isVerbose: l.isVerbose,
	}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Critical логирует фатальную для запуска ошибку, не завершая процесс
func (l *ETLLogger) Critical(format string, v ...interface{}) {
	l.sugar.With("severity", "critical").Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.sugar.Debugf(format, v...)
}

// Sync сбрасывает буферы логгера
func (l *ETLLogger) Sync() {
	_ = l.base.Sync()
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart(runID string) {
	l.Info("====== Начало выполнения ETL-процесса (запуск %s) ======", runID)
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, facts int, dropped int) {
	l.Info("====== ETL-процесс успешно завершён ======")
	l.Info("Загружено фактов: %d, отброшено невалидных транзакций: %d", facts, dropped)
	l.LogElapsed(startTime)
}

// LogElapsed логирует общее время выполнения, в том числе после ошибки
func (l *ETLLogger) LogElapsed(startTime time.Time) {
	l.Info("Общее время выполнения: %.2f сек.", time.Since(startTime).Seconds())
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(customers, transactions, merchants int, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	l.Info("Извлечено: %d клиентов, %d транзакций, %d продавцов", customers, transactions, merchants)
}
