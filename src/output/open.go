package output

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// DefaultProgram selects the OS default viewer.
const DefaultProgram = "default"

// Open launches path in program, or the OS default viewer when program is
// empty or DefaultProgram. It does not wait for the viewer to exit.
func Open(path, program string) error {
	cmd := openCommand(runtime.GOOS, path, program)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	log.Printf("Output: opened %s with %s", path, cmd.Path)
	go func() { _ = cmd.Wait() }()
	return nil
}

func openCommand(goos, path, program string) *exec.Cmd {
	program = strings.TrimSpace(program)
	if program == "" || strings.EqualFold(program, DefaultProgram) {
		switch goos {
		case "windows":
			return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
		case "darwin":
			return exec.Command("open", path)
		default:
			return exec.Command("xdg-open", path)
		}
	}
	if goos == "darwin" && strings.HasSuffix(program, ".app") {
		return exec.Command("open", "-a", program, path)
	}
	return exec.Command(program, path)
}
