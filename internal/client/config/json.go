package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/waterwatch/internal/flagx"
	"github.com/dmitrijs2005/waterwatch/internal/timex"
)

// JsonConfig is the file shape; absent keys leave the current value alone.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	ExportDir      *string         `json:"export_dir"`
	LocalDB        *string         `json:"local_db"`
}

// parseJson overlays cfg with the file named by -c/-config. Read and decode
// errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ExportDir != nil {
		cfg.ExportDir = *jc.ExportDir
	}
	if jc.LocalDB != nil {
		cfg.LocalDB = *jc.LocalDB
	}
}
