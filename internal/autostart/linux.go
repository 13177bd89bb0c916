package autostart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"rubox/internal/util"
)

const serviceTemplate = `[Unit]
Description=RuBox folder mirror
After=network-online.target

[Service]
ExecStart="{{.ExecPath}}" run
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

var serviceTmpl = template.Must(template.New("service").Parse(serviceTemplate))

type LinuxAutoStarter struct {
	// Dir overrides ~/.config/systemd/user.
	Dir string
	run func(args ...string) ([]byte, error)
}

func renderUnit(execPath string) ([]byte, error) {
	var buf bytes.Buffer
	if err := serviceTmpl.Execute(&buf, map[string]string{"ExecPath": execPath}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (l *LinuxAutoStarter) servicePath() (string, error) {
	dir := l.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, ServiceName), nil
}

func (l *LinuxAutoStarter) Install(execPath string) error {
	path, err := l.servicePath()
	if err != nil {
		return err
	}

	unit, err := renderUnit(execPath)
	if err != nil {
		return fmt.Errorf("failed to render service file: %w", err)
	}

	if err := os.WriteFile(path, unit, 0644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	cmds := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", ServiceName},
		{"systemctl", "--user", "start", ServiceName},
	}

	for _, args := range cmds {
		if out, err := l.run(args...); err != nil {
			return fmt.Errorf("failed to run %v: %w\n%s", args, err, out)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	cmds := [][]string{
		{"systemctl", "--user", "stop", ServiceName},
		{"systemctl", "--user", "disable", ServiceName},
	}

	for _, args := range cmds {
		_, _ = l.run(args...)
	}

	path, err := l.servicePath()
	if err != nil {
		return err
	}

	return util.RemoveIfExists(path)
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.servicePath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
