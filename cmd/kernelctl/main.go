// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/antimetal/oskernel/pkg/kernel/kdump"
	"github.com/antimetal/oskernel/pkg/kernel/kinit"
	"github.com/antimetal/oskernel/pkg/kernel/knet"
	"github.com/antimetal/oskernel/pkg/kernel/ktime"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "probe" {
		runProbe(os.Args[2:])
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "echo" {
		runEcho(os.Args[2:])
		return
	}
	fmt.Fprintf(os.Stderr, "usage: %s <probe|echo> [flags]\n", os.Args[0])
	os.Exit(2)
}

func newLogger(verbose bool) logr.Logger {
	if verbose {
		zapLog, _ := zap.NewDevelopment()
		return zapr.NewLogger(zapLog)
	}
	return logr.Discard()
}

// runProbe brings the kernel up, prints a snapshot of its locale/time state
// to a dump entry and to stdout, then tears it back down. A smoke-test
// subcommand for exercising kinit end to end.
func runProbe(args []string) {
	flags := flagSetOrExit("probe", args)
	processName := flags.procName
	verbose := flags.verbose

	logger := newLogger(verbose)

	k, err := kinit.Init(kinit.Config{ProcessName: processName, Logger: logger})
	if err != nil {
		logger.Error(err, "kernel init failed")
		os.Exit(1)
	}
	defer k.Term()

	timer := ktime.NewHighPerfTimer()
	start := timer.Ticks()

	now := ktime.Now()
	lang := k.Locale.CurrentLanguage()
	measurement := k.Locale.Measurement()

	fmt.Printf("process:     %s (pid %d)\n", processName, os.Getpid())
	fmt.Printf("time stamp:  %s\n", now.Time().Format(time.RFC3339Nano))
	fmt.Printf("language:    %s\n", lang)
	fmt.Printf("measurement: %s\n", measurement)
	fmt.Printf("elapsed:     %dus\n", timer.Ticks()-start)

	if err := k.Dump.Write(kdump.Entry{
		ProcessName: processName,
		ThreadName:  "probe",
		Facility:    "kernelctl",
		AuxText:     fmt.Sprintf("probe ok, language=%s measurement=%s", lang, measurement),
	}); err != nil {
		logger.Error(err, "dump write failed")
	}
}

// runEcho starts a listener engine on a single non-secure port and echoes
// whatever it reads back to each connection, until interrupted.
func runEcho(args []string) {
	flags := flagSetOrExit("echo", args)
	logger := newLogger(flags.verbose)

	listener := knet.NewListener(flags.port, 0, 16, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener.Start(ctx)
	fmt.Printf("echo listening on :%d, press Ctrl+C to stop\n", flags.port)

	go func() {
		for {
			conn, ok := listener.Wait(500 * time.Millisecond)
			if !ok {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			go handleEcho(conn, logger)
		}
	}()

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := listener.Stop(stopCtx); err != nil {
		logger.Error(err, "listener stop failed")
	}
}

func handleEcho(conn knet.Conn, logger logr.Logger) {
	defer conn.Close()
	buf := make([]byte, 4096)
	for {
		n, err := conn.Conn.Read(buf)
		if n > 0 {
			if _, werr := conn.Conn.Write(buf[:n]); werr != nil {
				logger.Error(werr, "echo write failed", "remote", conn.Remote.Text())
				return
			}
		}
		if err != nil {
			return
		}
	}
}

type cliFlags struct {
	procName string
	verbose  bool
	port     int
}

func flagSetOrExit(name string, args []string) cliFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	procName := fs.String("process-name", "kernelctl", "process name recorded in dump entries")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	port := fs.Int("port", 7, "TCP port to listen on")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	return cliFlags{procName: *procName, verbose: *verbose, port: *port}
}
