package logging

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

// Config задаёт вывод логов
type Config struct {
	Dir          string   // Каталог файлов логов, пусто: только консоль
	ConsoleLevel LogLevel // Минимальный уровень для консоли
	FileLevel    LogLevel // Минимальный уровень для файла
}

var (
	configMu      sync.RWMutex
	activeConfig  *Config // nil: логирование выключено
	defaultLogger *Logger
)

// Configure включает логирование с указанными настройками
// и перенастраивает уже выданные логгеры компонентов.
func Configure(cfg Config) error {
	configMu.Lock()
	c := cfg
	activeConfig = &c
	configMu.Unlock()

	return manager.rebind(&c)
}

func currentConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return activeConfig
}

// Logger представляет логгер компонента
type Logger struct {
	mu              sync.Mutex
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

// NewLogger создаёт логгер компонента по текущей конфигурации.
// Без конфигурации возвращается логгер, который ничего не пишет.
func NewLogger(component string) (*Logger, error) {
	l := &Logger{component: component}
	if err := l.bind(currentConfig()); err != nil {
		return nil, err
	}
	return l, nil
}

// bind перенастраивает вывод логгера; nil выключает его.
// Старый файл логов закрывается.
func (l *Logger) bind(cfg *Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closeFileLocked()
	l.consoleLogger = nil
	if cfg == nil {
		return nil
	}
	l.consoleLogger = log.New(os.Stdout, "", log.LstdFlags)
	l.minConsoleLevel = cfg.ConsoleLevel
	l.minFileLevel = cfg.FileLevel
	if cfg.Dir == "" {
		return nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", cfg.Dir, err)
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", l.component, timestamp))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("ошибка создания файла логов: %w", err)
	}
	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	return nil
}

// SetLevels меняет минимальные уровни консоли и файла
func (l *Logger) SetLevels(consoleLevel, fileLevel LogLevel) {
	l.mu.Lock()
	l.minConsoleLevel = consoleLevel
	l.minFileLevel = fileLevel
	l.mu.Unlock()
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeFileLocked()
}

func (l *Logger) closeFileLocked() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.consoleLogger == nil && l.fileLogger == nil {
		return
	}
	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))
	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if l.consoleLogger != nil && level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.log(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.log(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// InitDefaultLogger создаёт глобальный логгер.
// Если Configure не вызывался, включается консольный вывод уровня INFO.
func InitDefaultLogger(component string) error {
	if currentConfig() == nil {
		if err := Configure(Config{ConsoleLevel: INFO, FileLevel: DEBUG}); err != nil {
			return err
		}
	}
	l, err := NewLogger(component)
	if err != nil {
		return err
	}
	configMu.Lock()
	defaultLogger = l
	configMu.Unlock()
	return nil
}

// CloseDefaultLogger закрывает глобальный логгер и логгеры компонентов
func CloseDefaultLogger() {
	configMu.Lock()
	l := defaultLogger
	defaultLogger = nil
	configMu.Unlock()

	_ = l.Close()
	_ = GetLoggerManager().CloseAll()
}

func getDefault() *Logger {
	configMu.RLock()
	defer configMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE в глобальный логгер
func Trace(format string, args ...interface{}) { getDefault().log(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG в глобальный логгер
func Debug(format string, args ...interface{}) { getDefault().log(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO в глобальный логгер
func Info(format string, args ...interface{}) { getDefault().log(INFO, format, args...) }

// Warn логирует сообщение уровня WARN в глобальный логгер
func Warn(format string, args ...interface{}) { getDefault().log(WARN, format, args...) }

// Error логирует сообщение уровня ERROR в глобальный логгер
func Error(format string, args ...interface{}) { getDefault().log(ERROR, format, args...) }

// HexDump создает hex дамп данных
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "No data"
	}

	// Ограничиваем размер дампа до 64 байт: заголовка чанка хватает для диагностики
	size := len(data)
	if size > 64 {
		size = 64
	}

	return hex.Dump(data[:size])
}
