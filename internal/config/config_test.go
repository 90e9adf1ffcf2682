package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/smithp17/AutoDialer/internal/profile"
)

// clearCredentialEnv makes sure the host environment does not leak into a test.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"EMAIL", "PASSWORD", EnvPrefix + "_EMAIL", EnvPrefix + "_PASSWORD"} {
		t.Setenv(k, "")
	}
}

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	clearCredentialEnv(t)
	v := viper.New()
	BindEnv(v)
	return v
}

// --- Load Tests ---

func TestLoad_Defaults(t *testing.T) {
	v := newViper(t)
	v.Set("credentials.email", "me@example.com")
	v.Set("credentials.password", "secret")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(profile.DefaultUsernames, cfg.Usernames); diff != "" {
		t.Errorf("usernames mismatch (-want +got):\n%s", diff)
	}
	if cfg.BaseURL != profile.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Output.Path != "scraped_profiles.json" || cfg.Output.Format != "json" || cfg.Output.Indent != "    " {
		t.Errorf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Settle.Mode != SettlePoll || cfg.Settle.PageDelay != 4*time.Second {
		t.Errorf("unexpected settle defaults: %+v", cfg.Settle)
	}
	if cfg.Pacing.Delay != 3*time.Second {
		t.Errorf("Pacing.Delay = %v, want 3s", cfg.Pacing.Delay)
	}
	if cfg.About.MaxRunes != 500 {
		t.Errorf("About.MaxRunes = %d, want 500", cfg.About.MaxRunes)
	}
}

func TestLoad_CredentialsFromPlainEnv(t *testing.T) {
	v := newViper(t)
	t.Setenv("EMAIL", "env@example.com")
	t.Setenv("PASSWORD", "env-secret")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Credentials.Email != "env@example.com" || cfg.Credentials.Password != "env-secret" {
		t.Errorf("credentials not read from env: %+v", cfg.Credentials)
	}
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	v := newViper(t)
	t.Setenv("EMAIL", "me@example.com")
	t.Setenv("PASSWORD", "secret")
	t.Setenv(EnvPrefix+"_OUTPUT_FORMAT", "yaml")
	t.Setenv(EnvPrefix+"_SETTLE_MODE", "fixed")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want yaml", cfg.Output.Format)
	}
	if cfg.Settle.Mode != SettleFixed {
		t.Errorf("Settle.Mode = %q, want fixed", cfg.Settle.Mode)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		missing  []string
	}{
		{"both missing", "", "", []string{"credentials.email", "credentials.password"}},
		{"email missing", "", "secret", []string{"credentials.email"}},
		{"password missing", "me@example.com", "", []string{"credentials.password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set("credentials.email", tt.email)
			v.Set("credentials.password", tt.password)

			_, err := Load(v)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if diff := cmp.Diff(tt.missing, verr.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
			if !verr.MissingCredentials() {
				t.Error("MissingCredentials() = false")
			}
			if !strings.Contains(verr.Remediation(), "EMAIL=") {
				t.Errorf("remediation should show the expected variables, got %q", verr.Remediation())
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	v := newViper(t)
	v.Set("credentials.email", "me@example.com")
	v.Set("credentials.password", "secret")
	v.Set("output.format", "csv")
	v.Set("settle.mode", "eventually")
	v.Set("usernames", []string{})

	_, err := Load(v)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	want := []string{"output.format", "settle.mode", "usernames"}
	if diff := cmp.Diff(want, verr.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if verr.MissingCredentials() {
		t.Error("MissingCredentials() = true for non-credential failures")
	}
}

// --- Credentials Tests ---

func TestCredentials_Validate(t *testing.T) {
	if err := (Credentials{Email: "a@b.c", Password: "x"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	err := (Credentials{}).Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "(EMAIL)") || !strings.Contains(err.Error(), "(PASSWORD)") {
		t.Errorf("error should name the environment variables, got %q", err.Error())
	}
}

// --- Dotenv Tests ---

func TestLoadDotEnv(t *testing.T) {
	clearCredentialEnv(t)
	os.Unsetenv("EMAIL")
	os.Unsetenv("PASSWORD")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("EMAIL=dot@example.com\nPASSWORD=dot-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("EMAIL"); got != "dot@example.com" {
		t.Errorf("EMAIL = %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
	if err := LoadDotEnv(""); err != nil {
		t.Errorf("empty path should be ignored, got %v", err)
	}
}
