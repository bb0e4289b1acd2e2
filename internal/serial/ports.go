package serial

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo holds details about a serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

// ListPorts returns available serial ports.
func ListPorts() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, p := range ports {
		result = append(result, PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
		})
	}
	return result, nil
}

// FindKeyboardPort picks the port a ZMK keyboard is most likely on: the
// sole USB serial device, if there is exactly one. With zero or several
// candidates the user has to choose with --port.
func FindKeyboardPort() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", fmt.Errorf("listing serial ports: %w", err)
	}
	return pickKeyboardPort(ports)
}

func pickKeyboardPort(ports []PortInfo) (string, error) {
	var usb []PortInfo
	for _, p := range ports {
		if p.IsUSB {
			usb = append(usb, p)
		}
	}
	switch len(usb) {
	case 0:
		return "", fmt.Errorf("no USB serial device found; is the keyboard plugged in?")
	case 1:
		return usb[0].Name, nil
	default:
		names := make([]string, len(usb))
		for i, p := range usb {
			names[i] = p.Name
		}
		return "", fmt.Errorf("multiple USB serial devices (%s); pick one with --port",
			strings.Join(names, ", "))
	}
}
