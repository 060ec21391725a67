package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp runs the test inside a fresh directory so logs/ never lands in
// the repository.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		os.Chdir(wd)
	})
}

func TestSetupLoggingDisabledByDefault(t *testing.T) {
	chdirTemp(t)
	if logFile := setupLogging(false); logFile != nil {
		logFile.Close()
		t.Error("expected no log file when debug is off")
	}
	if log.Writer() != io.Discard {
		t.Errorf("log output = %v, want io.Discard", log.Writer())
	}
	if _, err := os.Stat(logDir); !os.IsNotExist(err) {
		t.Error("logs directory created while debug is off")
	}
}

func TestSetupLoggingWritesFile(t *testing.T) {
	chdirTemp(t)
	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected a log file when debug is on")
	}
	defer logFile.Close()

	log.Println("tick")
	info, err := os.Stat(filepath.Join(logDir, logFileName))
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("log file is empty")
	}
	if log.Writer() == os.Stdout || log.Writer() == os.Stderr {
		t.Error("log output must not reach the terminal")
	}
}

func TestSetupLoggingRotates(t *testing.T) {
	chdirTemp(t)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(logDir, logFileName)
	if err := os.WriteFile(logPath, make([]byte, maxLogSize+1), 0644); err != nil {
		t.Fatal(err)
	}

	logFile := setupLogging(true)
	if logFile == nil {
		t.Fatal("expected a log file")
	}
	defer logFile.Close()

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := false
	for _, entry := range entries {
		if entry.Name() != logFileName && filepath.Ext(entry.Name()) == ".log" {
			rotated = true
		}
	}
	if !rotated {
		t.Error("old log file was not rotated")
	}
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > maxLogSize {
		t.Errorf("new log file is %d bytes", info.Size())
	}
}

func TestEnsureFoldersExist(t *testing.T) {
	chdirTemp(t)
	log.SetOutput(io.Discard)
	if err := EnsureFoldersExist("sprites", filepath.Join("static", "nested")); err != nil {
		t.Fatalf("EnsureFoldersExist() error = %v", err)
	}
	for _, dir := range []string{"sprites", filepath.Join("static", "nested")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created", dir)
		}
	}
	// 已存在时不报错
	if err := EnsureFoldersExist("sprites"); err != nil {
		t.Errorf("second call error = %v", err)
	}
}
