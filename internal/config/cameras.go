package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Camera setting defaults.
const (
	DefaultPort        = "554"
	DefaultStreamIndex = "0"
)

// CameraSettings holds the raw comma-separated multi-value camera settings
// as read from the environment or config file. Every field except IP may be
// empty.
type CameraSettings struct {
	IP          string
	Port        string
	URISuffix   string
	Username    string
	Password    string
	StreamIndex string
}

// CameraConfig is the resolved configuration for a single camera. Built once
// at startup, immutable, one instance consumed per camera reader.
type CameraConfig struct {
	Host        string
	Port        uint
	URISuffix   string
	Username    string
	Password    string
	StreamIndex uint
}

// ParseCameras expands the comma-separated settings into per-camera configs.
// The camera count N is the maximum list length across all six fields; a
// field with a single value is broadcast to all N cameras. Any field whose
// length is neither 1 nor N is a configuration error, reported with every
// field's observed length.
func ParseCameras(s CameraSettings) ([]CameraConfig, error) {
	if strings.TrimSpace(s.IP) == "" {
		return nil, fmt.Errorf("CAMERA_IP is required")
	}
	if s.Port == "" {
		s.Port = DefaultPort
	}
	if s.StreamIndex == "" {
		s.StreamIndex = DefaultStreamIndex
	}

	hosts := splitList(s.IP)
	uriSuffixes := splitList(s.URISuffix)
	usernames := splitList(s.Username)
	passwords := splitList(s.Password)

	ports, err := parseUintList(s.Port, "CAMERA_PORT")
	if err != nil {
		return nil, err
	}
	streamIndices, err := parseUintList(s.StreamIndex, "STREAM_INDEX")
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name   string
		length int
	}{
		{"CAMERA_IP", len(hosts)},
		{"CAMERA_PORT", len(ports)},
		{"CAMERA_URI_SUFFIX", len(uriSuffixes)},
		{"CAMERA_USERNAME", len(usernames)},
		{"CAMERA_PASSWORD", len(passwords)},
		{"STREAM_INDEX", len(streamIndices)},
	}

	n := 1
	for _, f := range fields {
		if f.length > n {
			n = f.length
		}
	}

	var bad []string
	for _, f := range fields {
		if f.length != 1 && f.length != n {
			bad = append(bad, f.name)
		}
	}
	if len(bad) > 0 {
		details := make([]string, 0, len(fields))
		for _, f := range fields {
			details = append(details, fmt.Sprintf("%s: %d", f.name, f.length))
		}
		return nil, fmt.Errorf(
			"camera settings must have 1 or %d comma-separated values (mismatched: %s); field lengths: %s",
			n, strings.Join(bad, ", "), strings.Join(details, ", "))
	}

	cameras := make([]CameraConfig, n)
	for i := range cameras {
		cameras[i] = CameraConfig{
			Host:        pickString(hosts, i),
			Port:        pickUint(ports, i),
			URISuffix:   pickString(uriSuffixes, i),
			Username:    pickString(usernames, i),
			Password:    pickString(passwords, i),
			StreamIndex: pickUint(streamIndices, i),
		}
	}
	return cameras, nil
}

// splitList splits a comma-separated setting and trims whitespace. An empty
// setting yields a single empty value, which broadcasts to all cameras.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// parseUintList splits and parses an unsigned-integer setting, naming the
// field on failure.
func parseUintList(raw, field string) ([]uint, error) {
	parts := splitList(raw)
	values := make([]uint, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q in %s: %w", p, field, err)
		}
		values[i] = uint(v)
	}
	return values, nil
}

// pickString indexes a broadcast-or-indexed list.
func pickString(list []string, i int) string {
	if len(list) == 1 {
		return list[0]
	}
	return list[i]
}

// pickUint indexes a broadcast-or-indexed list.
func pickUint(list []uint, i int) uint {
	if len(list) == 1 {
		return list[0]
	}
	return list[i]
}
