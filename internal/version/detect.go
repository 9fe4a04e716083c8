package version

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// detectTimeout bounds a `--version` probe.
const detectTimeout = 10 * time.Second

// Info captures a tool version installed on the system.
type Info struct {
	Name    string
	Version string
}

var versionRegex = regexp.MustCompile(`(?i)\bv?(\d+\.\d+(?:\.\d+)?(?:-\d+)?)`)

// Detect returns the version of tool by calling `tool --version` from dir. A
// relative tool path is resolved against dir.
func Detect(ctx context.Context, dir, tool string) (Info, error) {
	out, err := runCommand(ctx, dir, tool, "--version")
	if err != nil {
		return Info{}, err
	}
	v, err := Parse(out)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", tool, err)
	}
	return Info{Name: tool, Version: v}, nil
}

// String returns only the version string of tool; it matches the signature
// coverage collection expects.
func String(ctx context.Context, dir, tool string) (string, error) {
	info, err := Detect(ctx, dir, tool)
	if err != nil {
		return "", err
	}
	return info.Version, nil
}

// Parse extracts the first dotted version number from a `--version` banner.
func Parse(out string) (string, error) {
	match := versionRegex.FindStringSubmatch(out)
	if len(match) < 2 {
		return "", fmt.Errorf("unable to parse version from %q", out)
	}
	return match[1], nil
}

func runCommand(ctx context.Context, dir, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
