package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gharchiver/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name:    "file output",
			cfg:     &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewWithWriter(tt.cfg, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWithWriter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("NewWithWriter() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestConsoleOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&config.LoggingConfig{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	logger.Info("hidden message")
	logger.WithField("resource", "starred").Warn("visible message")

	output := buf.String()
	if strings.Contains(output, "hidden message") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(output, "visible message") {
		t.Error("Warn message not found in output")
	}
	if !strings.Contains(output, "starred") {
		t.Error("Field value not found in console output")
	}
}

func TestFileOutputIsJSON(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "gharchiver.log")
	var console bytes.Buffer

	logger, err := NewWithWriter(&config.LoggingConfig{Level: "info", File: logFile}, &console)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	logger.WithField("username", "octo").Info("Archive started")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"app":"gharchiver"`) {
		t.Errorf("Expected app field in file output, got %s", line)
	}
	if !strings.Contains(line, `"username":"octo"`) {
		t.Errorf("Expected username field in file output, got %s", line)
	}
	if !strings.Contains(console.String(), "Archive started") {
		t.Error("Expected console to receive the entry too")
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	cases := map[string]func(string){
		"debug message": logger.Debug,
		"info message":  logger.Info,
		"warn message":  logger.Warn,
		"error message": logger.Error,
	}
	for msg, logFn := range cases {
		buf.Reset()
		logFn(msg)
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	child := logger.WithField("run_id", "abc")
	child.WithFields(map[string]interface{}{"count": 3}).Info("child message")

	output := buf.String()
	if !strings.Contains(output, `"run_id":"abc"`) || !strings.Contains(output, `"count":3`) {
		t.Errorf("Expected chained fields in output, got %s", output)
	}

	buf.Reset()
	logger.Info("parent message")
	if strings.Contains(buf.String(), "run_id") {
		t.Error("Parent logger must not inherit child fields")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	if logger.WithError(nil) != Logger(logger) {
		t.Error("WithError(nil) should return the same logger")
	}

	logger.WithError(errors.New("status 404")).Error("fetch failed")
	output := buf.String()
	if !strings.Contains(output, "fetch failed") || !strings.Contains(output, "status 404") {
		t.Errorf("Expected message and error in output, got %s", output)
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.InfoWithFields("typed fields", map[string]interface{}{
		"string":   "test",
		"int64":    int64(456),
		"bool":     true,
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"cause":    errors.New("boom"),
	})

	output := buf.String()
	for _, want := range []string{`"string":"test"`, `"int64":456`, `"bool":true`, `"strings":["a","b"]`, `"cause":"boom"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output, got %s", want, output)
		}
	}
}

func TestTestLoggerCapturesDerivedLoggers(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("resource", "followers").WithError(errors.New("boom")).Error("Resource failed")
	tl.Info("Archive finished")

	if !tl.HasError() {
		t.Fatal("Expected an error entry")
	}
	errs := tl.GetMessagesByLevel("ERROR")
	if errs[0].Fields["resource"] != "followers" {
		t.Errorf("Expected resource field, got %v", errs[0].Fields)
	}
	if errs[0].Error == nil || errs[0].Error.Error() != "boom" {
		t.Errorf("Expected captured error, got %v", errs[0].Error)
	}
	if !tl.HasMessage("Archive finished") {
		t.Error("Expected info message to be captured")
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 {
		t.Error("Clear should drop all messages")
	}
}

func TestLogResource(t *testing.T) {
	tl := NewTestLogger()

	LogResource(tl, "profile", "STORED", nil)
	LogResource(tl, "starred", "FETCH_FAILED", errors.New("status 500"))

	if len(tl.GetMessagesByLevel("DEBUG")) != 1 {
		t.Error("Expected one debug entry for the stored resource")
	}
	errs := tl.GetMessagesByLevel("ERROR")
	if len(errs) != 1 || errs[0].Fields["state"] != "FETCH_FAILED" {
		t.Errorf("Expected one FETCH_FAILED error entry, got %v", errs)
	}
}

func TestGlobalLogger(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	defer SetLogger(NewNopLogger())

	Info("global info")
	WithField("key", "value").Warn("global warn")
	WithError(errors.New("x")).Error("global error")

	if len(tl.GetMessages()) != 3 {
		t.Errorf("Expected 3 captured messages, got %d", len(tl.GetMessages()))
	}
}
