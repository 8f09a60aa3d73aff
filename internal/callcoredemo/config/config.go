// Package config loads cmd/callcore-demo's configuration: flags with
// environment variable overrides, defaulting, and validation before
// use.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sebas/callcore/internal/callcore"
)

// Config holds cmd/callcore-demo's configuration.
type Config struct {
	// SIP transport settings, consumed by internal/sipvoip.
	Port          int
	BindAddr      string
	AdvertiseAddr string
	LocalUser     string
	Gateway       string
	DialTimeout   time.Duration

	// DurationInterval is how often CallDuration callbacks are emitted
	// per connected call (0 disables them).
	DurationInterval time.Duration

	// Media node addresses, consumed by internal/mediaclient.
	RTPManagerAddrs []string

	// Admission control, consumed by internal/callcore.Core.Init.
	Core callcore.Config

	// API server bind address for health/stats endpoints.
	APIAddr string

	// Campaign mode: when DialParties is non-empty the demo dials each
	// party, plays PlayFile into the answered call, and drops it.
	DialParties []string
	PlayFile    string
	MaxPlayouts int64

	LogLevel string
}

// Load parses flags and environment variable overrides, falling back
// to sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DialTimeout: 30 * time.Second,
	}

	flag.IntVar(&cfg.Port, "port", 5060, "SIP listening port")
	flag.StringVar(&cfg.BindAddr, "bind", "0.0.0.0", "SIP bind address")
	flag.StringVar(&cfg.AdvertiseAddr, "advertise", "", "Address to advertise in SIP headers (auto-detected if not set)")
	flag.StringVar(&cfg.LocalUser, "local-user", "callcore", "User part of our From/Contact URIs")
	flag.StringVar(&cfg.Gateway, "gateway", "", "SIP trunk (host:port) for bare-number dial targets")
	flag.StringVar(&cfg.LogLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.APIAddr, "api-addr", "0.0.0.0:8080", "Health/stats HTTP listen address")
	flag.DurationVar(&cfg.DurationInterval, "duration-interval", 30*time.Second, "CallDuration reporting interval (0 disables)")

	var rtpManagerAddrs string
	flag.StringVar(&rtpManagerAddrs, "rtpmanager", "localhost:9090", "RTP Manager gRPC addresses (comma-separated)")

	var dialParties string
	flag.StringVar(&dialParties, "dial", "", "Parties to call on startup (comma-separated); empty runs the server idle")
	flag.StringVar(&cfg.PlayFile, "play-file", "demo.wav", "Audio file to play into answered campaign calls")
	flag.Int64Var(&cfg.MaxPlayouts, "max-playouts", 8, "Maximum concurrent announcement playouts")

	var logID string
	flag.StringVar(&logID, "log-id", "callcore", "log_id attribute stamped on every core log line")

	var maxActive uint
	var maxQueue uint
	flag.UintVar(&maxActive, "max-active-calls", 16, "Maximum concurrent in-flight calls")
	flag.UintVar(&maxQueue, "max-queue-depth", 0, "Maximum pending-admission queue depth (0 = unbounded)")

	flag.Parse()

	cfg.RTPManagerAddrs = parseAddressList(rtpManagerAddrs)
	cfg.DialParties = parseAddressList(dialParties)
	cfg.Core = callcore.Config{
		LogID:          logID,
		MaxActiveCalls: uint32(maxActive),
		MaxQueueDepth:  uint32(maxQueue),
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if bind := os.Getenv("BIND"); bind != "" {
		cfg.BindAddr = bind
	}
	if advertise := os.Getenv("ADVERTISE"); advertise != "" {
		cfg.AdvertiseAddr = advertise
	}
	if cfg.AdvertiseAddr == "" || !isValidAddress(cfg.AdvertiseAddr) {
		cfg.AdvertiseAddr = getPrimaryInterfaceIP()
	}
	if gateway := os.Getenv("GATEWAY"); gateway != "" {
		cfg.Gateway = gateway
	}
	if loglevel := os.Getenv("LOGLEVEL"); loglevel != "" {
		cfg.LogLevel = loglevel
	}
	if rtpmanager := os.Getenv("RTPMANAGER_ADDRS"); rtpmanager != "" {
		cfg.RTPManagerAddrs = parseAddressList(rtpmanager)
	}
	if maxActiveEnv := os.Getenv("MAX_ACTIVE_CALLS"); maxActiveEnv != "" {
		if v, err := strconv.ParseUint(maxActiveEnv, 10, 32); err == nil {
			cfg.Core.MaxActiveCalls = uint32(v)
		}
	}

	if err := cfg.Core.Validate(); err != nil {
		return nil, fmt.Errorf("[Config] invalid admission config: %w", err)
	}

	return cfg, nil
}

func parseAddressList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

func isValidAddress(addr string) bool {
	if ip := net.ParseIP(addr); ip != nil {
		return true
	}
	ips, err := net.LookupIP(addr)
	return err == nil && len(ips) > 0
}

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
