package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionLayout(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Plan", 1500*time.Millisecond, false)
	sec.KV("tag", "registry.example.com/app:1.0")
	sec.Separator()
	sec.Close()

	lines := strings.Split(strings.TrimPrefix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "    ── Plan "))
	assert.True(t, strings.HasSuffix(lines[0], " 1.5s ──"))
	assert.Equal(t, sectionWidth+4, len([]rune(strings.TrimPrefix(lines[0], "    "))))
	assert.Equal(t, "    │ tag             registry.example.com/app:1.0", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "    ├─"))
	assert.True(t, strings.HasPrefix(lines[3], "    └─"))
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", StatusIcon(StatusSuccess, false))
	assert.Equal(t, "✗", StatusIcon(StatusFailed, false))
	assert.Equal(t, "⊘", StatusIcon(StatusSkipped, false))
	assert.Equal(t, "\033[32m✓\033[0m", StatusIcon(StatusSuccess, true))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "<1ms", FormatElapsed(10*time.Microsecond))
	assert.Equal(t, "250ms", FormatElapsed(250*time.Millisecond))
	assert.Equal(t, "2.0s", FormatElapsed(2*time.Second))
	assert.Equal(t, "1m30.0s", FormatElapsed(90*time.Second))
}

func TestGitLabSectionsOnlyInGitLab(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("GITLAB_CI", "")
	SectionStart(&buf, "db_build", "Build")
	SectionEnd(&buf, "db_build")
	assert.Empty(t, buf.String())

	t.Setenv("GITLAB_CI", "true")
	SectionStartCollapsed(&buf, "db_cache", "Cache")
	assert.Contains(t, buf.String(), "section_start:")
	assert.Contains(t, buf.String(), "db_cache[collapsed=true]")
}

func TestUseColorHonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CI", "true")
	assert.False(t, UseColor())
}
