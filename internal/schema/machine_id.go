package schema

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const passwordSalt = "lazyfilter-keyring-salt-v1"

// deriveFilePassword builds the file backend's passphrase from the machine
// id and the user name. It is stable per machine and user.
func deriveFilePassword() (string, error) {
	machineID, err := machineID()
	if err != nil {
		machineID, _ = os.Hostname()
	}

	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows
	}
	if username == "" {
		username = fmt.Sprintf("uid-%d", os.Getuid())
	}

	hash := sha256.Sum256([]byte(machineID + username + passwordSalt))
	return base64.StdEncoding.EncodeToString(hash[:]), nil
}

func machineID() (string, error) {
	switch runtime.GOOS {
	case "linux":
		for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
			if data, err := os.ReadFile(path); err == nil {
				return strings.TrimSpace(string(data)), nil
			}
		}
		return os.Hostname()
	case "darwin":
		return commandID("IOPlatformUUID", "ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	case "windows":
		return commandID("", "wmic", "csproduct", "get", "UUID")
	default:
		return os.Hostname()
	}
}

// commandID runs a system tool and picks the id from its output. With a
// marker the value after '=' on the marker line is used, otherwise the first
// non-header line.
func commandID(marker string, name string, args ...string) (string, error) {
	output, err := exec.Command(name, args...).Output()
	if err != nil {
		return os.Hostname()
	}
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if marker != "" {
			if !strings.Contains(line, marker) {
				continue
			}
			if parts := strings.Split(line, "="); len(parts) == 2 {
				return strings.Trim(strings.TrimSpace(parts[1]), "\""), nil
			}
			continue
		}
		if line != "" && line != "UUID" {
			return line, nil
		}
	}
	return os.Hostname()
}
