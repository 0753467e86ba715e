package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/splotview/splotview/src/config"
	"github.com/splotview/splotview/src/project"
	"github.com/splotview/splotview/src/session"
)

func saveProject(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "proj"+project.FileExt)
	if err := project.Save(path, session.NewSession(nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestInfoCommand_RecordsRecentProject(t *testing.T) {
	dir := t.TempDir()
	path := saveProject(t, dir)
	cfg := config.Default()
	cfg.RecentLog = filepath.Join(dir, "fileLog.txt")

	cmd := infoCmd(&cfg)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("info: %v", err)
	}

	log := &project.RecentLog{Path: cfg.RecentLog}
	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	abs, _ := filepath.Abs(path)
	if len(entries) != 1 || entries[0].Path != abs {
		t.Fatalf("project not recorded: %+v", entries)
	}
}

func TestInfoCommand_FailedOpenNotRecorded(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RecentLog = filepath.Join(dir, "fileLog.txt")

	cmd := infoCmd(&cfg)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{filepath.Join(dir, "missing"+project.FileExt)})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected load error")
	}

	log := &project.RecentLog{Path: cfg.RecentLog}
	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed open recorded: %+v", entries)
	}
}

func TestRenderCommand_RecordsRecentProject(t *testing.T) {
	dir := t.TempDir()
	path := saveProject(t, dir)
	cfg := config.Default()
	cfg.RecentLog = filepath.Join(dir, "fileLog.txt")

	cmd := renderCmd(&cfg)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{path, "-o", filepath.Join(dir, "out")})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	log := &project.RecentLog{Path: cfg.RecentLog}
	entries, err := log.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	abs, _ := filepath.Abs(path)
	if len(entries) != 1 || entries[0].Path != abs {
		t.Fatalf("project not recorded: %+v", entries)
	}
}
