package config

import "testing"

func TestValidateValid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"full", `discovery_dirs: [/run/user/1000/avd/running]
probe: true
probe_timeout: 1.5s
default_serial: emulator-5554
log_level: info
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate([]byte(tt.data))
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !result.Valid {
				t.Errorf("expected valid, got issues: %+v", result.Issues)
			}
		})
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{"unknown key", "colour: on\n", ""},
		{"probe not bool", "probe: sometimes\n", "/probe"},
		{"bad timeout", "probe_timeout: soon\n", "/probe_timeout"},
		{"bad level", "log_level: loud\n", "/log_level"},
		{"dirs not list", "discovery_dirs: /tmp\n", "/discovery_dirs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate([]byte(tt.data))
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if result.Valid {
				t.Fatal("expected invalid")
			}
			if len(result.Issues) == 0 {
				t.Fatal("expected at least one issue")
			}
			found := false
			for _, issue := range result.Issues {
				if issue.Path == tt.wantPath {
					found = true
				}
				if issue.Message == "" {
					t.Errorf("issue at %q has no message", issue.Path)
				}
			}
			if !found {
				t.Errorf("no issue at %q in %+v", tt.wantPath, result.Issues)
			}
		})
	}
}

func TestValidateBadYAML(t *testing.T) {
	if _, err := Validate([]byte("probe: [unterminated\n")); err == nil {
		t.Error("expected a YAML parse error")
	}
}

func TestValidateRejectsNonMapping(t *testing.T) {
	if _, err := Validate([]byte("- probe\n- log_level\n")); err == nil {
		t.Error("a YAML list is not a config")
	}
}
