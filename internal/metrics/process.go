package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats: снимок ресурсов процесса
type ProcessStats struct {
	Uptime     time.Duration
	RSS        uint64
	CPUPercent float64
}

// String форматирует снимок для журнала
func (s ProcessStats) String() string {
	return fmt.Sprintf("uptime %s, RSS %.1f MB, CPU %.1f%%",
		FormatUptime(s.Uptime), float64(s.RSS)/1024/1024, s.CPUPercent)
}

// SampleProcess снимает память и CPU текущего процесса и обновляет gauges
func (r *Recorder) SampleProcess() (ProcessStats, error) {
	stats := ProcessStats{}
	if r != nil {
		stats.Uptime = time.Since(r.startTime)
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return stats, err
	}
	stats.RSS = mem.RSS

	// CPU недоступен на некоторых платформах, память всё равно полезна
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}

	if r != nil {
		r.processRSS.Set(float64(stats.RSS))
		r.processCPU.Set(stats.CPUPercent)
	}
	return stats, nil
}

// FormatUptime возвращает длительность в виде «1д 2ч 3м 4с»
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
