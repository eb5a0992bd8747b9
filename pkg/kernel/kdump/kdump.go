// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package kdump implements the kernel's stack dump facility (C13): an
// append-mode, process-wide crash/error log file, serialized so concurrent
// faulting goroutines never interleave entries.
package kdump

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
)

// DumpDirEnvVar is the environment variable naming the configured dump
// directory. If opening a file there fails, Writer falls back to the
// process's own directory.
const DumpDirEnvVar = "KERNEL_DUMP_DIR"

// Entry is one stack-dump record. Facility and ErrorID/KernelErrorID/
// HostErrorID are only meaningful for runtime-error entries; AuxText is a
// free-form detail string.
type Entry struct {
	Header        string
	ProcessName   string
	ThreadName    string
	Facility      string
	ErrorID       int
	KernelErrorID kerrors.ErrorCode
	HostErrorID   int64
	AuxText       string
	File          string
	Line          int
}

// Writer owns the single append-mode dump file for this process and
// serializes every Write call through a mutex so concurrent faulting
// goroutines never interleave lines.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if necessary) the dump file "<proc>_<pid><ext>" in
// the directory named by KERNEL_DUMP_DIR, falling back to the running
// executable's own directory if that path fails to open.
func Open(processName string, pid int, ext string) (*Writer, error) {
	name := fmt.Sprintf("%s_%d%s", processName, pid, ext)

	if dir := os.Getenv(DumpDirEnvVar); dir != "" {
		if f, err := openAppend(filepath.Join(dir, name)); err == nil {
			return &Writer{file: f}, nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("kdump: cannot determine process directory: %w", err)
	}
	f, err := openAppend(filepath.Join(filepath.Dir(exe), name))
	if err != nil {
		return nil, fmt.Errorf("kdump: cannot open dump file in process directory: %w", err)
	}
	return &Writer{file: f}, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Write appends entry as a single serialized record. Concurrent callers are
// fully serialized; no two Write calls ever interleave their output.
func (w *Writer) Write(entry Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := formatEntry(entry)
	_, err := w.file.WriteString(line)
	return err
}

func formatEntry(e Entry) string {
	line := fmt.Sprintf(
		"[%s] process=%s thread=%s",
		time.Now().UTC().Format(time.RFC3339Nano), e.ProcessName, e.ThreadName,
	)
	if e.Header != "" {
		line = fmt.Sprintf("%s header=%q", line, e.Header)
	}
	if e.Facility != "" {
		line += fmt.Sprintf(" facility=%s error_id=%d kernel_error_id=%s host_error_id=%d",
			e.Facility, e.ErrorID, e.KernelErrorID, e.HostErrorID)
	}
	if e.AuxText != "" {
		line += fmt.Sprintf(" aux=%q", e.AuxText)
	}
	if e.File != "" {
		line += fmt.Sprintf(" at=%s:%d", e.File, e.Line)
	}
	return line + "\n"
}

// Close closes the underlying dump file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
