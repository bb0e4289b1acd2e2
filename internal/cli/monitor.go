package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/serial"
	"github.com/buckleypaul/lfz/internal/store"
	"github.com/buckleypaul/lfz/internal/ui"
)

func newMonitorCmd() *cobra.Command {
	var (
		port    string
		baud    int
		logFile bool
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream serial log output from the keyboard",
		Long:  "Streams the keyboard's USB serial console. Requires firmware built\nwith the zmk-usb-logging snippet. Stop with ctrl+c.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, port, baud, logFile)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "serial port (default: auto-detect)")
	cmd.Flags().IntVar(&baud, "baud", 0, "baud rate")
	cmd.Flags().BoolVar(&logFile, "log", false, "also write output to .lfz/logs/")
	return cmd
}

func runMonitor(cmd *cobra.Command, port string, baud int, logFile bool) error {
	out := cmd.OutOrStdout()

	// Settings fill in anything the flags leave unset. Monitoring works
	// outside a project too; then only global settings apply.
	var projectRoot string
	if project, err := config.DetectProject(); err == nil {
		projectRoot = project.Root
	}
	settings := config.LoadSettings(projectRoot)
	if port == "" {
		port = settings.SerialPort
	}
	if baud == 0 {
		baud = settings.BaudRate
	}

	if port == "" {
		detected, err := serial.FindKeyboardPort()
		if err != nil {
			return err
		}
		port = detected
	}

	session, err := serial.Open(port, baud)
	if err != nil {
		return err
	}
	defer session.Close()
	ui.Status(out, "Port", fmt.Sprintf("%s @ %d baud", port, baud))
	ui.Infof(out, "Press ctrl+c to stop.")

	dest := out
	if logFile && projectRoot != "" {
		s := store.New(filepath.Join(projectRoot, ".lfz"))
		logsDir, err := s.LogsDir()
		if err != nil {
			return err
		}
		name := filepath.Join(logsDir, time.Now().Format("20060102-150405")+".log")
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
		defer f.Close()
		s.AddSerialLog(store.SerialLog{
			Port:      port,
			BaudRate:  baud,
			Timestamp: time.Now(),
			LogFile:   name,
		})
		ui.Status(out, "Log", name)
		dest = io.MultiWriter(out, f)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return session.Stream(ctx, dest)
}
