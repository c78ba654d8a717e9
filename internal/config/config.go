package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Phone types selectable for the agent. A desk phone supervisor must
// still answer, so supervise starts Ringing instead of Connected.
const (
	PhoneSoft = "soft_phone"
	PhoneDesk = "desk_phone"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	Caps       Capabilities     `yaml:"capabilities"`
	Simulation SimulationConfig `yaml:"simulation"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Signaling  SignalingConfig  `yaml:"signaling"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AgentConfig struct {
	ID            string `yaml:"id"`
	FullName      string `yaml:"full_name"`
	SelectedPhone string `yaml:"selected_phone"`
}

// Capabilities gates which actions the simulated environment supports.
type Capabilities struct {
	HasMute                 bool   `yaml:"has_mute"`
	HasRecord               bool   `yaml:"has_record"`
	HasMerge                bool   `yaml:"has_merge"`
	HasSwap                 bool   `yaml:"has_swap"`
	HasSignedRecordingURL   bool   `yaml:"has_signed_recording_url"`
	SignedRecordingURL      string `yaml:"signed_recording_url"`
	SignedRecordingDuration int    `yaml:"signed_recording_duration"`
	HasContactSearch        bool   `yaml:"has_contact_search"`
	HasAgentAvailability    bool   `yaml:"has_agent_availability"`
	HasQueueWaitTime        bool   `yaml:"has_queue_wait_time"`
	HasSupervisorListenIn   bool   `yaml:"has_supervisor_listen_in"`
	HasSupervisorBargeIn    bool   `yaml:"has_supervisor_barge_in"`
	HasBlindTransfer        bool   `yaml:"has_blind_transfer"`
	HasPhoneBook            bool   `yaml:"has_phone_book"`
	CanConsult              bool   `yaml:"can_consult"`
	SupportsMOS             bool   `yaml:"supports_mos"`
	DebugEnabled            bool   `yaml:"debug_enabled"`
}

// SimulationConfig holds the demo fault-injection and timing knobs.
type SimulationConfig struct {
	DelayMs     int          `yaml:"delay_ms"`
	AlwaysFail  bool         `yaml:"always_fail"`
	CustomError *CustomError `yaml:"custom_error"`
}

type CustomError struct {
	Namespace string `yaml:"namespace"`
	Label     string `yaml:"label"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

type SignalingConfig struct {
	URL string `yaml:"url"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when a field is absent from the
// config file.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			SelectedPhone: PhoneSoft,
		},
		Caps: Capabilities{
			HasMute:              true,
			HasRecord:            true,
			HasMerge:             true,
			HasSwap:              true,
			HasContactSearch:     true,
			HasAgentAvailability: true,
			DebugEnabled:         true,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "softphone-sim",
			TopicPrefix: "softphone",
		},
		Signaling: SignalingConfig{
			URL: "ws://localhost:3030/signaling",
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 1,
		},
	}
}

// Load reads and validates a YAML config file, filling in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Agent.ID == "" {
		return fmt.Errorf("agent.id is required")
	}
	if c.Agent.SelectedPhone != PhoneSoft && c.Agent.SelectedPhone != PhoneDesk {
		return fmt.Errorf("agent.selected_phone must be %s or %s, got %q", PhoneSoft, PhoneDesk, c.Agent.SelectedPhone)
	}
	if c.Simulation.DelayMs < 0 {
		return fmt.Errorf("simulation.delay_ms must not be negative, got %d", c.Simulation.DelayMs)
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the file driver")
		}
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if c.MQTT.ClientID == "" {
		return fmt.Errorf("mqtt.client_id is required")
	}
	if c.MQTT.TopicPrefix == "" {
		return fmt.Errorf("mqtt.topic_prefix is required")
	}
	if c.Signaling.URL == "" {
		return fmt.Errorf("signaling.url is required")
	}
	return nil
}
