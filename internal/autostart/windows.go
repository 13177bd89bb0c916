package autostart

import (
	"fmt"
)

type WindowsAutoStarter struct {
	run func(args ...string) ([]byte, error)
}

func taskArgs(execPath string) []string {
	return []string{"schtasks", "/create",
		"/TN", TaskName,
		"/TR", fmt.Sprintf(`"%s" run`, execPath),
		"/SC", "ONLOGON",
		"/RL", "LIMITED",
		"/F"}
}

func (w *WindowsAutoStarter) Install(execPath string) error {
	out, err := w.run(taskArgs(execPath)...)
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	out, err := w.run("schtasks", "/DELETE", "/TN", TaskName, "/F")
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	if _, err := w.run("schtasks", "/Query", "/TN", TaskName); err != nil {
		return false, nil
	}

	return true, nil
}
