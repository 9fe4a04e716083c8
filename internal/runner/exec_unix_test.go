//go:build !windows

package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgricker/testreport/internal/report"
)

// gone reports whether pid no longer runs. An unreaped zombie counts as gone.
func gone(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return true
	}
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) > 0 && fields[0] == "Z"
}

func TestRunTestReapsBackgroundChildren(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "child.pid")
	script := writeScript(t, dir, "daemon", "sleep 30 >/dev/null 2>&1 &\necho $! > "+pidFile+"\nexit 0")

	outcome := newTestRunner(Options{}).RunTest(context.Background(), Command{Name: "daemon", Path: script, Timeout: 10 * time.Second})
	require.Equal(t, report.StatusPassed, outcome.Status)

	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return gone(pid) }, 3*time.Second, 20*time.Millisecond)
}
