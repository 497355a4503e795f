package presenter

import (
	"os/exec"
	"runtime"

	"github.com/fredrikhr/restview/internal/errdef"
)

// LaunchFile opens a file with the given viewer command, or the
// platform default opener when viewer is empty. The viewer process is
// started, not awaited.
func LaunchFile(path, viewer string) error {
	var cmd *exec.Cmd
	switch {
	case viewer != "":
		cmd = exec.Command(viewer, path)
	case runtime.GOOS == "darwin":
		cmd = exec.Command("open", path)
	case runtime.GOOS == "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return errdef.Wrap(errdef.CodePresenter, err, "launch viewer for %q", path)
	}
	return nil
}
