// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Config is the resolved server configuration.
type Config struct {
	TCPAddr  string
	HTTPAddr string
	LogLevel string

	// RedisAddr enables the action log publisher when set.
	RedisAddr string
	RedisDB   int
	QueueName string

	// Rules are the defaults for rooms created without their own values.
	Rules models.HouseRules
}

// fileConfig mirrors the HCL file layout.
type fileConfig struct {
	Server *serverBlock `hcl:"server,block"`
	Rules  *rulesBlock  `hcl:"rules,block"`
}

type serverBlock struct {
	TCPAddr   string `hcl:"tcp_addr,optional"`
	HTTPAddr  string `hcl:"http_addr,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	RedisAddr string `hcl:"redis_addr,optional"`
	RedisDB   int    `hcl:"redis_db,optional"`
	QueueName string `hcl:"queue_name,optional"`
}

type rulesBlock struct {
	MaxPlayers          int  `hcl:"max_players,optional"`
	StartingHandSize    int  `hcl:"starting_hand_size,optional"`
	AllowStacking       bool `hcl:"allow_stacking,optional"`
	AllowNumberStacking bool `hcl:"allow_number_stacking,optional"`
	InfiniteDrawing     bool `hcl:"infinite_drawing,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TCPAddr:   ":9090",
		HTTPAddr:  ":8080",
		LogLevel:  "info",
		QueueName: "uno_actions",
		Rules:     game.DefaultHouseRules(),
	}
}

// Load builds a Config from the defaults, then the HCL file at path if it
// exists, then the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays the values present in an HCL file. A missing file is
// not an error.
func (c *Config) applyFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if s := fc.Server; s != nil {
		setString(&c.TCPAddr, s.TCPAddr)
		setString(&c.HTTPAddr, s.HTTPAddr)
		setString(&c.LogLevel, s.LogLevel)
		setString(&c.RedisAddr, s.RedisAddr)
		setString(&c.QueueName, s.QueueName)
		if s.RedisDB != 0 {
			c.RedisDB = s.RedisDB
		}
	}
	if r := fc.Rules; r != nil {
		c.Rules = game.MergeRules(c.Rules, models.HouseRules{
			MaxPlayers:          r.MaxPlayers,
			StartingHandSize:    r.StartingHandSize,
			AllowStacking:       r.AllowStacking,
			AllowNumberStacking: r.AllowNumberStacking,
			InfiniteDrawing:     r.InfiniteDrawing,
		})
	}
	return nil
}

// applyEnv overlays environment variables. PORT only carries a port number,
// as on most hosting platforms.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	setString(&c.TCPAddr, get("UNO_TCP_ADDR"))
	if port := get("PORT"); port != "" {
		c.HTTPAddr = ":" + port
	}
	setString(&c.LogLevel, get("UNO_LOG_LEVEL"))
	setString(&c.RedisAddr, get("REDIS_ADDR"))
	setString(&c.QueueName, get("HISTORIAN_QUEUE_NAME"))
	if db := get("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", db, err)
		}
		c.RedisDB = n
	}
	return nil
}

// Validate checks the log level and the default rules.
func (c *Config) Validate() error {
	if c.TCPAddr == "" {
		return errors.New("tcp address must be set")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("invalid redis db: %d", c.RedisDB)
	}
	if err := game.ValidateRules(c.Rules); err != nil {
		return fmt.Errorf("default rules: %w", err)
	}
	return nil
}

// Level is the parsed log level, Info if it does not parse.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
