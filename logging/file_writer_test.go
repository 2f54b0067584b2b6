package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFileWriterConfig(t *testing.T) {
	config := DefaultFileWriterConfig()
	want := FileWriterConfig{
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
		Compress:   DefaultCompress,
	}
	if config != want {
		t.Errorf("DefaultFileWriterConfig() = %+v, want %+v", config, want)
	}
}

func TestNewFileWriter(t *testing.T) {
	for name, writer := range map[string]func(string) error{
		"default": func(path string) error {
			_, err := NewFileWriter(path).Write([]byte("line\n"))
			return err
		},
		"custom": func(path string) error {
			w := NewFileWriterWithConfig(path, FileWriterConfig{MaxSizeMB: 1, LocalTime: true})
			_, err := w.Write([]byte("line\n"))
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "xsmodels.log")
			if err := writer(path); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil || string(data) != "line\n" {
				t.Errorf("file = %q, %v", data, err)
			}
		})
	}
}

func TestOpenFileWriter_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "xsmodels.log")
	if _, err := openFileWriter(path, DefaultFileWriterConfig()); err != nil {
		t.Fatalf("openFileWriter() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestApplyFileWriterDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input FileWriterConfig
		want  FileWriterConfig
	}{
		{
			name:  "zero values get defaults",
			input: FileWriterConfig{},
			want:  FileWriterConfig{MaxSizeMB: DefaultMaxSizeMB, MaxBackups: DefaultMaxBackups, MaxAgeDays: DefaultMaxAgeDays},
		},
		{
			name:  "custom values preserved",
			input: FileWriterConfig{MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true, LocalTime: true},
			want:  FileWriterConfig{MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true, LocalTime: true},
		},
		{
			name:  "partial",
			input: FileWriterConfig{MaxSizeMB: 25, Compress: true},
			want:  FileWriterConfig{MaxSizeMB: 25, MaxBackups: DefaultMaxBackups, MaxAgeDays: DefaultMaxAgeDays, Compress: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyFileWriterDefaults(tt.input); got != tt.want {
				t.Errorf("applyFileWriterDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
