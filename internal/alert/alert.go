// Package alert fans audit findings out to webhook destinations.
package alert

// Config defines one webhook alert destination.
type Config struct {
	URL        string            `yaml:"url"        json:"url"`
	Severities []string          `yaml:"severities" json:"severities"`
	Headers    map[string]string `yaml:"headers"    json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp   string `json:"timestamp"`
	RunID       string `json:"run_id"`
	Datasource  string `json:"datasource"`
	Severity    string `json:"severity"`
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Table       string `json:"table,omitempty"`
	Description string `json:"description"`
}
