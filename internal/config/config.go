package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DispatchBLE    = "ble"
	DispatchBridge = "bridge"
	DispatchFile   = "file"
)

type Config struct {
	Server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"server"`

	Auth struct {
		ApiKey string `toml:"api_key"`
	} `toml:"auth"`

	BLE struct {
		DeviceNameContains      string `toml:"device_name_contains"`
		PrinterAddress          string `toml:"printer_address"`
		ServiceUUID             string `toml:"service_uuid"`
		WriteCharacteristicUUID string `toml:"write_characteristic_uuid"`
		ChunkSize               int    `toml:"chunk_size"`
		WriteWithResponse       bool   `toml:"write_with_response"`
	} `toml:"ble"`

	Logging struct {
		FilePath       string `toml:"file_path"`
		ConsoleVerbose bool   `toml:"console_verbose"`
	} `toml:"logging"`

	CORS struct {
		AllowOrigins        string `toml:"allow_origins"`
		AllowOriginPatterns string `toml:"allow_origin_patterns"`
	} `toml:"cors"`

	// Shop is the letterhead printed on every document.
	Shop struct {
		Name       string   `toml:"name"`
		TicketName string   `toml:"ticket_name"`
		Branch     string   `toml:"branch"`
		Address    []string `toml:"address"`
		Phone      string   `toml:"phone"`
	} `toml:"shop"`

	Receipt struct {
		PaperWidth        int    `toml:"paper_width"`
		SplitDelaySeconds int    `toml:"split_delay_seconds"`
		CodePage          string `toml:"code_page"`
		CurrencySymbol    string `toml:"currency_symbol"`
		TimeZone          string `toml:"time_zone"`
	} `toml:"receipt"`

	Dispatch struct {
		Mode         string `toml:"mode"`
		BridgeURL    string `toml:"bridge_url"`
		BridgeApiKey string `toml:"bridge_api_key"`
		FilePath     string `toml:"file_path"`
	} `toml:"dispatch"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default is the config used when no file exists yet, env overrides included.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 17800
	}
	if cfg.BLE.ChunkSize == 0 {
		cfg.BLE.ChunkSize = 180
	}
	if cfg.BLE.PrinterAddress == "" {
		cfg.BLE.PrinterAddress = "66:22:B6:5C:5C:3C"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "logs/app.log"
	}
	if cfg.CORS.AllowOrigins == "" {
		cfg.CORS.AllowOrigins = "http://localhost:5173"
	}

	if cfg.Shop.Name == "" {
		cfg.Shop.Name = "Le 1er Boulevard"
	}
	if cfg.Shop.TicketName == "" {
		cfg.Shop.TicketName = "1ER BOULEVARD"
	}
	if cfg.Shop.Branch == "" {
		cfg.Shop.Branch = "GUELIZ"
	}
	if len(cfg.Shop.Address) == 0 {
		cfg.Shop.Address = []string{"19 , Immeuble Jakar", "Boulevard Mohammed V 40000, Marrakech"}
	}
	if cfg.Shop.Phone == "" {
		cfg.Shop.Phone = "01 23 45 67 89"
	}

	if cfg.Receipt.PaperWidth == 0 {
		cfg.Receipt.PaperWidth = 32
	}
	if cfg.Receipt.SplitDelaySeconds == 0 {
		cfg.Receipt.SplitDelaySeconds = 3
	}
	if cfg.Receipt.CodePage == "" {
		cfg.Receipt.CodePage = "cp858"
	}
	if cfg.Receipt.CurrencySymbol == "" {
		cfg.Receipt.CurrencySymbol = "DH"
	}

	if cfg.Dispatch.Mode == "" {
		cfg.Dispatch.Mode = DispatchBLE
	}
	if cfg.Dispatch.FilePath == "" {
		cfg.Dispatch.FilePath = "spool/receipts.bin"
	}
}

// SplitDelay is the pause between the two halves of a split table ticket.
func (c *Config) SplitDelay() time.Duration {
	return time.Duration(c.Receipt.SplitDelaySeconds) * time.Second
}

// Location resolves the receipt time zone, falling back to the host zone.
func (c *Config) Location() *time.Location {
	if c.Receipt.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Receipt.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func Save(path string, cfg *Config) error {
	ApplyDefaults(cfg)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := toml.NewEncoder(file)
	return encoder.Encode(cfg)
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("BRIDGE_CORS_ALLOW_ORIGINS"); val != "" {
		cfg.CORS.AllowOrigins = val
	} else if val := os.Getenv("AGENT_CORS_ALLOW_ORIGINS"); val != "" {
		cfg.CORS.AllowOrigins = val
	}
	if val := os.Getenv("BRIDGE_CORS_ALLOW_ORIGIN_PATTERNS"); val != "" {
		cfg.CORS.AllowOriginPatterns = val
	} else if val := os.Getenv("AGENT_CORS_ALLOW_ORIGIN_PATTERNS"); val != "" {
		cfg.CORS.AllowOriginPatterns = val
	}
	if val := os.Getenv("RECEIPTS_DISPATCH_MODE"); val != "" {
		cfg.Dispatch.Mode = val
	}
	if val := os.Getenv("RECEIPTS_BRIDGE_URL"); val != "" {
		cfg.Dispatch.BridgeURL = val
	}
	if val := os.Getenv("RECEIPTS_BRIDGE_API_KEY"); val != "" {
		cfg.Dispatch.BridgeApiKey = val
	}
}
