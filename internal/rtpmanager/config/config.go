// Package config loads the media node's configuration from flags and
// environment variables.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
)

// Config holds the media node's configuration.
type Config struct {
	GRPCPort      int
	GRPCBindAddr  string
	AdvertiseAddr string // address to advertise in SDP
	RTPPortMin    int
	RTPPortMax    int
	AudioBasePath string
	LogLevel      string
}

// Load parses flags with environment-variable overrides and validates
// the result.
func Load() (*Config, error) {
	cfg := &Config{}

	flag.IntVar(&cfg.GRPCPort, "grpc-port", 9090, "gRPC server port")
	flag.StringVar(&cfg.GRPCBindAddr, "bind", "0.0.0.0", "gRPC bind address")
	flag.StringVar(&cfg.AdvertiseAddr, "advertise", "", "Address to advertise in SDP (auto-detected if not set)")
	flag.IntVar(&cfg.RTPPortMin, "rtp-port-min", 10000, "Minimum RTP port")
	flag.IntVar(&cfg.RTPPortMax, "rtp-port-max", 20000, "Maximum RTP port")
	flag.StringVar(&cfg.AudioBasePath, "audio-path", "./audio", "Audio files base path")
	flag.StringVar(&cfg.LogLevel, "loglevel", "info", "Log level")

	flag.Parse()

	if v := os.Getenv("GRPC_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.GRPCPort = p
		}
	}
	if v := os.Getenv("BIND"); v != "" {
		cfg.GRPCBindAddr = v
	}
	if v := os.Getenv("ADVERTISE"); v != "" {
		cfg.AdvertiseAddr = v
	} else if cfg.AdvertiseAddr == "" {
		cfg.AdvertiseAddr = getPrimaryInterfaceIP()
	}
	if v := os.Getenv("RTP_PORT_MIN"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.RTPPortMin = p
		}
	}
	if v := os.Getenv("RTP_PORT_MAX"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.RTPPortMax = p
		}
	}
	if v := os.Getenv("AUDIO_PATH"); v != "" {
		cfg.AudioBasePath = v
	}
	if v := os.Getenv("LOGLEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.RTPPortMin >= cfg.RTPPortMax {
		return nil, fmt.Errorf("invalid RTP port range %d-%d", cfg.RTPPortMin, cfg.RTPPortMax)
	}

	return cfg, nil
}

// getPrimaryInterfaceIP detects the primary network interface address.
func getPrimaryInterfaceIP() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}

	return "127.0.0.1"
}
