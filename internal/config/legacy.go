package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// LegacyFile is the INI file older releases read the client from.
const LegacyFile = "torrench.ini"

// ImportLegacy copies the client settings of a legacy torrench.ini into
// cfg:
//
//	[Torrench-Config]
//	CLIENT = transmission-remote
//	SERVER = localhost
//	PORT = 9091
func ImportLegacy(path string, cfg *Config) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	sec, err := f.GetSection("Torrench-Config")
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if v := sec.Key("CLIENT").String(); v != "" {
		cfg.Client.Name = v
	}
	if v := sec.Key("SERVER").String(); v != "" {
		cfg.Client.Host = v
	}
	if sec.HasKey("PORT") {
		port, err := sec.Key("PORT").Int()
		if err != nil {
			return fmt.Errorf("read %s: PORT: %w", path, err)
		}
		cfg.Client.Port = port
	}
	return nil
}
