package munki

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Power source values reported by PowerInfo.
const (
	ACPower      = "AC Power"
	BatteryPower = "Battery Power"
)

// PowerInfo is the machine's power state at the time of the query.
type PowerInfo struct {
	Source        string
	BatteryCharge int // percent; 0 when no battery is present
}

// DefaultPowerSupplyDir is where the kernel exposes power supply state.
const DefaultPowerSupplyDir = "/sys/class/power_supply"

// ReadPowerInfo derives the power source and battery charge from the
// power-supply class directory. Machines with no battery (or an
// unreadable tree) report AC power, which never blocks an install.
func ReadPowerInfo(dir string) (PowerInfo, error) {
	info := PowerInfo{Source: ACPower}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, err
	}

	onlineSeen := false
	online := false
	haveBattery := false
	for _, entry := range entries {
		supply := filepath.Join(dir, entry.Name())
		switch readSupplyFile(supply, "type") {
		case "Mains":
			onlineSeen = true
			if readSupplyFile(supply, "online") == "1" {
				online = true
			}
		case "Battery":
			haveBattery = true
			if n, err := strconv.Atoi(readSupplyFile(supply, "capacity")); err == nil {
				info.BatteryCharge = n
			}
		}
	}

	if haveBattery && onlineSeen && !online {
		info.Source = BatteryPower
	}
	return info, nil
}

// OnLowBattery reports whether the machine is running on battery with less
// than half a charge, the threshold at which an install prompts a warning.
func (p PowerInfo) OnLowBattery() bool {
	return p.Source == BatteryPower && p.BatteryCharge < 50
}

// OnBattery reports whether the machine is unplugged at any charge level.
func (p PowerInfo) OnBattery() bool {
	return p.Source == BatteryPower
}

func readSupplyFile(supply, name string) string {
	data, err := os.ReadFile(filepath.Join(supply, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
