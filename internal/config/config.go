package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML structure. It is read once at startup and
// immutable afterwards.
type Config struct {
	Listen  string      `yaml:"listen"`
	WCF     WCFConf     `yaml:"wcf"`
	Forward ForwardConf `yaml:"forward"`
}

// WCFConf locates the engine sidecar.
type WCFConf struct {
	URL string `yaml:"url"`
	// Pyq additionally subscribes to moments updates when receiving starts.
	Pyq bool `yaml:"pyq"`
}

// ForwardConf configures the message-forwarding pipeline. At most one of
// CallbackURL and AMQPURL may be set; with neither, messages are logged
// locally.
type ForwardConf struct {
	CallbackURL   string `yaml:"callback_url"`
	AMQPURL       string `yaml:"amqp_url"`
	AMQPExchange  string `yaml:"amqp_exchange"`
	PollTimeoutMs int    `yaml:"poll_timeout_ms"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the YAML config file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":9999"
	}
	if c.WCF.URL == "" {
		c.WCF.URL = "ws://127.0.0.1:10086/ws"
		c.WCF.Pyq = true
	}
	if c.Forward.AMQPExchange == "" {
		c.Forward.AMQPExchange = "wcf.messages"
	}
	if c.Forward.PollTimeoutMs == 0 {
		c.Forward.PollTimeoutMs = 1000
	}
}

// Validate rejects configurations the gateway cannot run with.
func Validate(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if err := checkScheme(c.WCF.URL, "wcf.url", "ws", "wss"); err != nil {
		return err
	}
	if c.Forward.CallbackURL != "" && c.Forward.AMQPURL != "" {
		return fmt.Errorf("forward.callback_url and forward.amqp_url are mutually exclusive")
	}
	if c.Forward.CallbackURL != "" {
		if err := checkScheme(c.Forward.CallbackURL, "forward.callback_url", "http", "https"); err != nil {
			return err
		}
	}
	if c.Forward.AMQPURL != "" {
		if err := checkScheme(c.Forward.AMQPURL, "forward.amqp_url", "amqp", "amqps"); err != nil {
			return err
		}
		if c.Forward.AMQPExchange == "" {
			return fmt.Errorf("forward.amqp_exchange is required with forward.amqp_url")
		}
	}
	if c.Forward.PollTimeoutMs <= 0 {
		return fmt.Errorf("forward.poll_timeout_ms must be positive, got %d", c.Forward.PollTimeoutMs)
	}
	return nil
}

func checkScheme(raw, field string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported scheme %q in %s", field, u.Scheme, raw)
}
