// Package settings manages persistent user settings for the cordlab CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// OutputEnv overrides the output directory for a single invocation.
const OutputEnv = "CORDLAB_OUTPUT"

// Settings holds persistent user preferences
type Settings struct {
	// OutputDir is where configuration documents are written
	OutputDir string `json:"output_dir,omitempty"`

	// Sink selects how documents reach controllers: file, rest, redis or command
	Sink string `json:"sink,omitempty"`

	// Emulator selects the injector: memory or ovs
	Emulator string `json:"emulator,omitempty"`

	RESTPort     int    `json:"rest_port,omitempty"`
	RESTUser     string `json:"rest_user,omitempty"`
	RESTPassword string `json:"rest_password,omitempty"`

	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`

	// SSH credentials for the command sink
	SSHUser     string `json:"ssh_user,omitempty"`
	SSHPassword string `json:"ssh_password,omitempty"`
	SSHKeyFile  string `json:"ssh_key_file,omitempty"`

	// AuditLog is the push audit file; "none" disables auditing
	AuditLog string `json:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cordlab_settings.json"
	}
	return filepath.Join(home, ".cordlab", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path. The file holds credentials,
// so it is private to the user.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// GetOutputDir returns the output directory: $CORDLAB_OUTPUT, then the
// saved setting, then the current directory.
func (s *Settings) GetOutputDir() string {
	if dir := os.Getenv(OutputEnv); dir != "" {
		return dir
	}
	if s.OutputDir != "" {
		return s.OutputDir
	}
	return "."
}

// GetSink returns the sink kind (default "file")
func (s *Settings) GetSink() string {
	if s.Sink != "" {
		return s.Sink
	}
	return "file"
}

// GetEmulator returns the emulator kind (default "memory")
func (s *Settings) GetEmulator() string {
	if s.Emulator != "" {
		return s.Emulator
	}
	return "memory"
}

type field struct {
	get func(*Settings) string
	set func(*Settings, string) error
}

func str(p func(*Settings) *string) field {
	return field{
		get: func(s *Settings) string { return *p(s) },
		set: func(s *Settings, v string) error { *p(s) = v; return nil },
	}
}

func num(p func(*Settings) *int) field {
	return field{
		get: func(s *Settings) string {
			if *p(s) == 0 {
				return ""
			}
			return strconv.Itoa(*p(s))
		},
		set: func(s *Settings, v string) error {
			if v == "" {
				*p(s) = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%q is not an integer", v)
			}
			*p(s) = n
			return nil
		},
	}
}

func oneOf(p func(*Settings) *string, allowed ...string) field {
	f := str(p)
	f.set = func(s *Settings, v string) error {
		for _, a := range allowed {
			if v == a || v == "" {
				*p(s) = v
				return nil
			}
		}
		return fmt.Errorf("%q is not one of %v", v, allowed)
	}
	return f
}

var fields = map[string]field{
	"output_dir":     str(func(s *Settings) *string { return &s.OutputDir }),
	"sink":           oneOf(func(s *Settings) *string { return &s.Sink }, "file", "rest", "redis", "command"),
	"emulator":       oneOf(func(s *Settings) *string { return &s.Emulator }, "memory", "ovs"),
	"rest_port":      num(func(s *Settings) *int { return &s.RESTPort }),
	"rest_user":      str(func(s *Settings) *string { return &s.RESTUser }),
	"rest_password":  str(func(s *Settings) *string { return &s.RESTPassword }),
	"redis_addr":     str(func(s *Settings) *string { return &s.RedisAddr }),
	"redis_password": str(func(s *Settings) *string { return &s.RedisPassword }),
	"redis_db":       num(func(s *Settings) *int { return &s.RedisDB }),
	"ssh_user":       str(func(s *Settings) *string { return &s.SSHUser }),
	"ssh_password":   str(func(s *Settings) *string { return &s.SSHPassword }),
	"ssh_key_file":   str(func(s *Settings) *string { return &s.SSHKeyFile }),
	"audit_log":      str(func(s *Settings) *string { return &s.AuditLog }),
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as a string ("" when unset).
func (s *Settings) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	return f.get(s), nil
}

// Set assigns value to key. An empty value clears it.
func (s *Settings) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := f.set(s, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
