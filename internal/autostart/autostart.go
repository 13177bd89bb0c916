package autostart

import (
	"os/exec"
	"runtime"
)

const (
	ServiceName = "rubox.service"
	TaskName    = "RuBoxDaemon"
)

type AutoStarter interface {
	Install(execPath string) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New() AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{run: runCommand}
	case "linux":
		return &LinuxAutoStarter{run: runCommand}
	default:
		return &UnsupportedAutoStarter{}
	}
}

func runCommand(args ...string) ([]byte, error) {
	return exec.Command(args[0], args[1:]...).CombinedOutput()
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ string) error {
	return nil
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
