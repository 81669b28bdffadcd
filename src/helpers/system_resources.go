package helpers

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// -----------------------------------------------------------------------------
// System Resources
// -----------------------------------------------------------------------------

// GetTotalSystemMemoryMB returns the total physical memory of the host in
// megabytes, or 0 if it cannot be determined.
func GetTotalSystemMemoryMB() int {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return int(vm.Total / 1024 / 1024)
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB returns the resident set size of the current process in
// megabytes, or 0 if it cannot be determined.
func GetProcessMemoryMB() int {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0
	}
	return int(info.RSS / 1024 / 1024)
}
