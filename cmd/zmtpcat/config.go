package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/meshwire/zmtp"
	"github.com/meshwire/zmtp/null"
)

// fileConfig mirrors the TOML file layout. Durations are carried as
// milliseconds so the file stays plain integers.
type fileConfig struct {
	Addr               string `toml:"addr"`
	SocketType         string `toml:"socket_type"`
	Mechanism          string `toml:"mechanism"`
	ConnectTimeoutMS   int    `toml:"connect_timeout_ms"`
	HandshakeTimeoutMS int    `toml:"handshake_timeout_ms"`
	ReadBufferSize     int    `toml:"read_buffer_size"`
	Verbose            bool   `toml:"verbose"`
}

// runConfig is the resolved configuration the commands run with.
type runConfig struct {
	Addr             string
	SocketType       zmtp.SocketType
	Mechanism        string
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	Verbose          bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		Addr:             "tcp://127.0.0.1:5555",
		SocketType:       zmtp.SocketTypeReq,
		Mechanism:        null.MechName,
		ConnectTimeout:   3 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		ReadBufferSize:   4096,
	}
}

// loadConfig reads the TOML file at path and overlays the keys it
// defines onto the defaults. An empty path returns the defaults as is.
func loadConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("socket_type") {
		st, err := zmtp.ParseSocketType([]byte(strings.ToUpper(strings.TrimSpace(raw.SocketType))))
		if err != nil {
			return runConfig{}, fmt.Errorf("load config: %w", err)
		}
		cfg.SocketType = st
	}
	if meta.IsDefined("mechanism") {
		cfg.Mechanism = strings.ToUpper(strings.TrimSpace(raw.Mechanism))
	}
	if meta.IsDefined("connect_timeout_ms") {
		cfg.ConnectTimeout = time.Duration(raw.ConnectTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("handshake_timeout_ms") {
		cfg.HandshakeTimeout = time.Duration(raw.HandshakeTimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("read_buffer_size") {
		cfg.ReadBufferSize = raw.ReadBufferSize
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}
	return cfg, nil
}
