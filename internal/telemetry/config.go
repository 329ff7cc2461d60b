package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	envEndpoint    = "TINYSCRIPT_TRACE_OTEL_ENDPOINT"
	envInsecure    = "TINYSCRIPT_TRACE_OTEL_INSECURE"
	envService     = "TINYSCRIPT_TRACE_OTEL_SERVICE"
	envDialTimeout = "TINYSCRIPT_TRACE_OTEL_TIMEOUT"
	envHeaders     = "TINYSCRIPT_TRACE_OTEL_HEADERS"

	DefaultServiceName = "tinyscript"
)

type Config struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
	DialTimeout time.Duration
	Headers     map[string]string
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv reads the exporter settings. Malformed values are ignored.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Config{ServiceName: DefaultServiceName}
	if getenv == nil {
		return cfg
	}
	cfg.Endpoint = strings.TrimSpace(getenv(envEndpoint))
	if v, err := strconv.ParseBool(strings.TrimSpace(getenv(envInsecure))); err == nil {
		cfg.Insecure = v
	}
	if svc := strings.TrimSpace(getenv(envService)); svc != "" {
		cfg.ServiceName = svc
	}
	if d, err := time.ParseDuration(strings.TrimSpace(getenv(envDialTimeout))); err == nil {
		cfg.DialTimeout = d
	}
	if headers, err := ParseHeaders(getenv(envHeaders)); err == nil {
		cfg.Headers = headers
	}
	return cfg
}

// ParseHeaders parses "k=v, k2=v2". A blank input yields nil.
func ParseHeaders(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q", part)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}
