package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/expreshop/expreshop/internal/flagx"
	"github.com/expreshop/expreshop/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration so interval fields accept both string values
// such as "30m" and integer nanoseconds. Fields absent from the file are left
// at their current values.
type JsonConfig struct {
	EndpointAddrHTTP              string         `json:"endpoint_addr_http"`
	DatabaseDSN                   string         `json:"database_dsn"`
	SecretKey                     string         `json:"secret_key"`
	AccessTokenValidityDuration   timex.Duration `json:"access_token_validity_duration"`
	RecoveryTokenValidityDuration timex.Duration `json:"recovery_token_validity_duration"`
	FrontendBaseURL               string         `json:"frontend_base_url"`
	SMTPHost                      string         `json:"email_host"`
	SMTPPort                      int            `json:"email_port"`
	SMTPUser                      string         `json:"email_user"`
	SMTPPassword                  string         `json:"email_password"`
	MailFromName                  string         `json:"email_from_name"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into cfg. When no flag is given, nothing is loaded.
func parseJson(cfg *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", jsonConfigFile, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", jsonConfigFile, err)
	}

	if c.EndpointAddrHTTP != "" {
		cfg.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		cfg.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		cfg.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RecoveryTokenValidityDuration.Duration != 0 {
		cfg.RecoveryTokenValidityDuration = c.RecoveryTokenValidityDuration.Duration
	}
	if c.FrontendBaseURL != "" {
		cfg.FrontendBaseURL = c.FrontendBaseURL
	}
	if c.SMTPHost != "" {
		cfg.SMTPHost = c.SMTPHost
	}
	if c.SMTPPort != 0 {
		cfg.SMTPPort = c.SMTPPort
	}
	if c.SMTPUser != "" {
		cfg.SMTPUser = c.SMTPUser
	}
	if c.SMTPPassword != "" {
		cfg.SMTPPassword = c.SMTPPassword
	}
	if c.MailFromName != "" {
		cfg.MailFromName = c.MailFromName
	}

	return nil
}
