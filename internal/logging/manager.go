package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Компоненты tile-world, у каждого свой логгер и свой файл
const (
	ComponentWorld    = "world"
	ComponentStorage  = "storage"
	ComponentPathfind = "pathfind"
	ComponentRunner   = "runner"
	ComponentEvents   = "events"
)

// Manager выдаёт логгеры компонентов.
// Выданный логгер остаётся тем же объектом: Configure перенастраивает его вывод на месте,
// поэтому логгер можно сохранить в поле структуры.
type Manager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var manager = &Manager{loggers: make(map[string]*Logger)}

// GetLoggerManager возвращает общий менеджер логгеров
func GetLoggerManager() *Manager { return manager }

// Logger возвращает логгер компонента, создавая его по текущей конфигурации.
// Если файл логов не открылся, компонент пишет только в консоль.
func (m *Manager) Logger(component string) *Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loggers[component]; ok {
		return l
	}
	l := &Logger{component: component}
	if err := l.bind(currentConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %s: %v\n", component, err)
	}
	m.loggers[component] = l
	return l
}

// rebind переключает все выданные логгеры на cfg
func (m *Manager) rebind(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, l := range m.loggers {
		if err := l.bind(cfg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// CloseAll закрывает файлы логов. Консольный вывод остаётся.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Components возвращает имена компонентов с логгерами, по алфавиту
func (m *Manager) Components() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.loggers))
	for name := range m.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetLogLevel меняет уровни уже созданного логгера компонента
func (m *Manager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	m.mu.Lock()
	l, ok := m.loggers[component]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("логгер компонента %s не создан", component)
	}
	l.SetLevels(consoleLevel, fileLevel)
	return nil
}

func GetComponentLogger(component string) *Logger {
	return manager.Logger(component)
}

// GetWorldLogger возвращает логгер мира
func GetWorldLogger() *Logger { return manager.Logger(ComponentWorld) }

// GetStorageLogger возвращает логгер хранилищ чанков и контрольных точек
func GetStorageLogger() *Logger { return manager.Logger(ComponentStorage) }

// GetPathfindLogger возвращает логгер поиска пути
func GetPathfindLogger() *Logger { return manager.Logger(ComponentPathfind) }

// GetRunnerLogger возвращает логгер цикла симуляции
func GetRunnerLogger() *Logger { return manager.Logger(ComponentRunner) }

// GetEventsLogger возвращает логгер шины событий
func GetEventsLogger() *Logger { return manager.Logger(ComponentEvents) }
