package session

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// ErrInsufficientMemory refuses a launch that would likely be OOM-killed
var ErrInsufficientMemory = errors.New("insufficient free memory to launch browser")

// MemoryProbe reports available system memory in megabytes
type MemoryProbe func() (uint64, error)

// SystemMemory reads available memory from the OS
func SystemMemory() (uint64, error) {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to get system memory stats: %w", err)
	}
	return vmStat.Available / 1024 / 1024, nil
}

func (m *Manager) checkMemory() error {
	if m.config.MinFreeMemoryMB <= 0 || m.memory == nil {
		return nil
	}

	availableMB, err := m.memory()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Could not check free memory, launching anyway")
		return nil
	}
	if availableMB < uint64(m.config.MinFreeMemoryMB) {
		m.logger.Error().
			Uint64("available_mb", availableMB).
			Int("required_mb", m.config.MinFreeMemoryMB).
			Msg("Not enough free memory to launch browser")
		return fmt.Errorf("%w: %dMB available, %dMB required", ErrInsufficientMemory, availableMB, m.config.MinFreeMemoryMB)
	}
	return nil
}
