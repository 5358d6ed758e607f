package provider

import (
	"strings"
)

// Config is the static provider configuration the client holds.
// It is supplied fully formed; the client only checks that nothing is empty.
type Config struct {
	APIKey     string
	TemplateID string
	APIURL     string
}

// Validate returns a ConfigurationMissing error naming every empty field.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api key")
	}
	if strings.TrimSpace(c.TemplateID) == "" {
		missing = append(missing, "template id")
	}
	if strings.TrimSpace(c.APIURL) == "" {
		missing = append(missing, "api url")
	}
	if len(missing) == 0 {
		return nil
	}
	return NewPassError(KindConfigurationMissing, "config",
		"missing "+strings.Join(missing, ", "), nil)
}

func (c Config) baseURL() string {
	return strings.TrimRight(c.APIURL, "/")
}
