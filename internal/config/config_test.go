package config

import (
	"os"
	"testing"
)

// TestOptions mirrors the shape of the main Options struct.
type TestOptions struct {
	Config string `help:"Config file path"`

	StringField string `toml:"test.string_field" env:"STRING_FIELD"`
	BoolField   bool   `toml:"test.bool_field" env:"BOOL_FIELD"`
	IntField    int    `toml:"test.int_field" env:"INT_FIELD"`

	NestedString string `toml:"nested.value" env:"NESTED_VALUE"`
}

func writeTempTOML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "camgate_config_*.toml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		t.Fatalf("Failed to write temp file: %v", writeErr)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeTempTOML(t, `
[test]
string_field = "hello world"
bool_field = true
int_field = 42

[nested]
value = "nested value"
`)

	opts := &TestOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.StringField != "hello world" {
		t.Errorf("Expected StringField 'hello world', got %q", opts.StringField)
	}
	if !opts.BoolField {
		t.Errorf("Expected BoolField true, got %v", opts.BoolField)
	}
	if opts.IntField != 42 {
		t.Errorf("Expected IntField 42, got %d", opts.IntField)
	}
	if opts.NestedString != "nested value" {
		t.Errorf("Expected NestedString 'nested value', got %q", opts.NestedString)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv("CAMGATE_STRING_FIELD", "env string")
	t.Setenv("CAMGATE_INT_FIELD", "123")

	opts := &TestOptions{}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.StringField != "env string" {
		t.Errorf("Expected StringField 'env string', got %q", opts.StringField)
	}
	if opts.IntField != 123 {
		t.Errorf("Expected IntField 123, got %d", opts.IntField)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeTempTOML(t, `
[test]
string_field = "toml value"
int_field = 100
`)

	t.Setenv("CAMGATE_STRING_FIELD", "env override")

	opts := &TestOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.StringField != "env override" {
		t.Errorf("Expected env override, got %q", opts.StringField)
	}
	if opts.IntField != 100 {
		t.Errorf("Expected IntField 100 from TOML, got %d", opts.IntField)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &TestOptions{Config: "nonexistent_file.toml"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig should not fail for missing file: %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeTempTOML(t, `
[test
invalid toml syntax
`)

	opts := &TestOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Fatal("LoadConfig should fail for invalid TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Config", "config"},
		{"BusSubject", "bus-subject"},
		{"CameraIP", "camera-i-p"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
