package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Source   MSourceConfig  `yaml:"source"`
	Counter  MCounterConfig `yaml:"counter"`
	Storage  MStorageConfig `yaml:"storage"`
}

type MSourceConfig struct {
	Chip     string  `yaml:"chip"`      // e.g. "gpiochip0"
	Pin      int     `yaml:"pin"`       // BCM line offset of the detector output
	PullUp   bool    `yaml:"pull_up"`   // open-collector wiring: line idles high, pulses pull it low
	Mock     bool    `yaml:"mock"`      // force the synthetic source
	MockRate float64 `yaml:"mock_rate"` // synthetic pulses per second
}

type MCounterConfig struct {
	MaxDeltas int `yaml:"max_deltas"` // inter-pulse delta history cap
	MaxSeries int `yaml:"max_series"` // per-second bin history cap
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "sqlite", "postgres" or "none"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}
