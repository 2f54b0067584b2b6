package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigValidator_CheckHeadas(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeFile(t, file, "x")

	tests := []struct {
		name   string
		headas string
		valid  bool
	}{
		{"unset", "", false},
		{"missing", filepath.Join(dir, "nope"), false},
		{"not a directory", file, false},
		{"directory", dir, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewConfigValidator(&Config{Headas: tt.headas}).CheckHeadas()
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (%s)", res.Valid, tt.valid, res.Message)
			}
			if !tt.valid && GetErrorCode(res.Error) != ErrCodeHeadasMissing {
				t.Errorf("code = %q", GetErrorCode(res.Error))
			}
		})
	}
}

func TestConfigValidator_CheckStateDir(t *testing.T) {
	dir := t.TempDir()
	res := NewConfigValidator(&Config{StateDB: filepath.Join(dir, "sub", "state.db")}).CheckStateDir()
	if !res.Valid {
		t.Fatalf("CheckStateDir: %v", res.Error)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub")); err != nil {
		t.Errorf("directory not created: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "sub"))
	if len(entries) != 0 {
		t.Errorf("write check file left behind: %v", entries)
	}

	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "x")
	res = NewConfigValidator(&Config{StateDB: filepath.Join(blocker, "state.db")}).CheckStateDir()
	if res.Valid || GetErrorCode(res.Error) != ErrCodeStateDir {
		t.Errorf("file as directory: Valid=%v code=%q", res.Valid, GetErrorCode(res.Error))
	}
}

func TestConfigValidator_CheckProfile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	writeFile(t, good, "chatter: 5\nabundance: lodd\n")
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "chatter: -1\n")

	tests := []struct {
		name  string
		path  string
		valid bool
	}{
		{"none", "", true},
		{"good", good, true},
		{"invalid", bad, false},
		{"missing", filepath.Join(dir, "missing.yaml"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewConfigValidator(&Config{ProfilePath: tt.path}).CheckProfile()
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (%s)", res.Valid, tt.valid, res.Message)
			}
			if !tt.valid && GetErrorCode(res.Error) != ErrCodeInvalidProfile {
				t.Errorf("code = %q", GetErrorCode(res.Error))
			}
		})
	}
}

func TestConfigValidator_ValidateRequired(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Headas: dir, StateDB: filepath.Join(dir, "state.db")}
	if err := NewConfigValidator(cfg).ValidateRequired(); err != nil {
		t.Fatalf("valid config: %v", err)
	}
	cfg.Headas = ""
	err := NewConfigValidator(cfg).ValidateRequired()
	if GetErrorCode(err) != ErrCodeHeadasMissing {
		t.Errorf("ValidateRequired = %v", err)
	}
	if got := len(NewConfigValidator(cfg).ValidateAll()); got != 3 {
		t.Errorf("ValidateAll returned %d results", got)
	}
}
