package metrics

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthSnapshot is a point-in-time view of the host and process, appended to
// the metrics export so operators can spot a starved client from the status
// output alone.
type HealthSnapshot struct {
	Uptime      time.Duration
	CPUPercent  float64
	MemUsedPct  float64
	ProcessRSS  uint64
	NumGoThread int32
}

var startTime = time.Now()

// CollectHealth gathers a best-effort snapshot. Individual probe failures
// leave the corresponding field zeroed rather than failing the whole call.
func CollectHealth(pid int32) HealthSnapshot {
	snap := HealthSnapshot{Uptime: time.Since(startTime)}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemUsedPct = vm.UsedPercent
	}
	if proc, err := process.NewProcess(pid); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			snap.ProcessRSS = info.RSS
		}
		if threads, err := proc.NumThreads(); err == nil {
			snap.NumGoThread = threads
		}
	}
	return snap
}

func (h HealthSnapshot) String() string {
	return fmt.Sprintf(
		"uptime_seconds %.0f\ncpu_percent %.2f\nmem_used_percent %.2f\nprocess_rss_bytes %d\nprocess_threads %d\n",
		h.Uptime.Seconds(), h.CPUPercent, h.MemUsedPct, h.ProcessRSS, h.NumGoThread,
	)
}
