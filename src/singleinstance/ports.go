package singleinstance

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550

	envPortStart = "SINGLEINSTANCE_PORT_START"
	envPortEnd   = "SINGLEINSTANCE_PORT_END"
)

// PortRange returns the inclusive TCP port range from SINGLEINSTANCE_PORT_START
// and SINGLEINSTANCE_PORT_END, falling back to defaults when unset or invalid.
func PortRange() (int, int) { return portRange(os.Getenv) }

func portRange(getenv func(string) string) (int, int) {
	start := envInt(getenv, envPortStart, defaultPortStart)
	end := envInt(getenv, envPortEnd, defaultPortEnd)
	start = max(start, 1024)
	end = min(end, 65535)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envInt(getenv func(string) string, key string, def int) int {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
