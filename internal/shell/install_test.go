package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// rcLineGen produces ordinary startup-file lines that never mention the hook.
var rcLineGen = rapid.StringMatching(`(export [A-Z]{1,8}=[a-z0-9/]{0,12}|alias [a-z]{1,6}='[a-z -]{1,12}'|# [a-z ]{0,20}|)`)

func rcContent(t *rapid.T) string {
	lines := rapid.SliceOfN(rcLineGen, 0, 20).Draw(t, "lines")
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeRC(t testing.TB, home, name, content string) string {
	t.Helper()
	path := filepath.Join(home, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Feature: asklog, Property 4: Installing twice equals installing once
func TestInstallIdempotent(t *testing.T) {
	home := t.TempDir()
	inst := NewInstaller(home, "", nil)

	rapid.Check(t, func(rt *rapid.T) {
		original := rcContent(rt)
		bashrc := writeRC(t, home, ".bashrc", original)
		zshrc := writeRC(t, home, ".zshrc", original)

		inst.Install()
		onceBash, onceZsh := readFile(t, bashrc), readFile(t, zshrc)

		for _, res := range inst.Install() {
			if res.Changed || res.Err != nil {
				rt.Fatalf("second install changed %s: %+v", res.RCFile, res)
			}
		}
		if got := readFile(t, bashrc); got != onceBash {
			rt.Fatalf("bashrc differs after second install:\n%q\n%q", onceBash, got)
		}
		if got := readFile(t, zshrc); got != onceZsh {
			rt.Fatalf("zshrc differs after second install:\n%q\n%q", onceZsh, got)
		}
		if !strings.HasPrefix(onceBash, original) {
			rt.Fatalf("install rewrote existing content")
		}
	})
}

// Feature: asklog, Property 5: Install then uninstall restores the file
func TestInstallUninstallRoundTrip(t *testing.T) {
	home := t.TempDir()
	inst := NewInstaller(home, "", nil)

	rapid.Check(t, func(rt *rapid.T) {
		original := rcContent(rt)
		bashrc := writeRC(t, home, ".bashrc", original)
		zshrc := writeRC(t, home, ".zshrc", original)

		inst.Install()
		inst.Uninstall()

		if got := readFile(t, bashrc); got != original {
			rt.Fatalf("bashrc not restored:\nwant %q\ngot  %q", original, got)
		}
		if got := readFile(t, zshrc); got != original {
			rt.Fatalf("zshrc not restored:\nwant %q\ngot  %q", original, got)
		}
	})
}

func TestInstallWritesShellSpecificBlock(t *testing.T) {
	home := t.TempDir()
	bashrc := writeRC(t, home, ".bashrc", "export PATH=/usr/bin\n")
	zshrc := writeRC(t, home, ".zshrc", "")

	results := NewInstaller(home, "", nil).Install()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Changed, r.Shell)
		assert.NoError(t, r.Err)
	}

	assert.Equal(t, "export PATH=/usr/bin\n"+`# >>> asklog terminal logging v1 >>>
log_terminal_output() {
  LOG_FILE="$HOME/terminal_output.log"
  script -q -a -c "$BASH_COMMAND" "$LOG_FILE"
}
trap 'log_terminal_output' DEBUG
# <<< asklog terminal logging <<<
`, readFile(t, bashrc))

	zsh := readFile(t, zshrc)
	assert.Contains(t, zsh, `script -q -a -c "$ZSH_COMMAND" "$LOG_FILE"`)
	assert.NotContains(t, zsh, "BASH_COMMAND")
}

func TestInstallCustomLogFile(t *testing.T) {
	home := t.TempDir()
	bashrc := writeRC(t, home, ".bashrc", "")

	NewInstaller(home, "$HOME/logs/ask.log", nil).Install()

	assert.Contains(t, readFile(t, bashrc), `LOG_FILE="$HOME/logs/ask.log"`)
}

func TestInstallSkipsMissingRCFiles(t *testing.T) {
	home := t.TempDir()
	writeRC(t, home, ".zshrc", "setopt autocd\n")

	results := NewInstaller(home, "", nil).Install()

	require.Len(t, results, 2)
	assert.True(t, results[0].Skipped, "bash should be skipped")
	assert.False(t, results[0].Changed)
	assert.True(t, results[1].Changed, "zsh should be installed")
	_, err := os.Stat(filepath.Join(home, ".bashrc"))
	assert.True(t, os.IsNotExist(err), "installer must not create missing startup files")
}

func TestInstallAddsNewlineBeforeBlock(t *testing.T) {
	home := t.TempDir()
	bashrc := writeRC(t, home, ".bashrc", "alias ll='ls -l'")

	NewInstaller(home, "", nil).Install()

	assert.True(t, strings.HasPrefix(readFile(t, bashrc), "alias ll='ls -l'\n# >>> asklog"))
}

func TestInstallRespectsLegacyHook(t *testing.T) {
	home := t.TempDir()
	legacy := "\nlog_terminal_output() {\n  LOG_FILE=\"$HOME/terminal_output.log\"\n  script -q -a -c \"$BASH_COMMAND\" \"$LOG_FILE\"\n}\ntrap 'log_terminal_output' DEBUG\n"
	bashrc := writeRC(t, home, ".bashrc", legacy)

	results := NewInstaller(home, "", nil).Install()

	assert.False(t, results[0].Changed)
	assert.Equal(t, legacy, readFile(t, bashrc))
}

// Feature: asklog, Property 7: Uninstall without a hook is a no-op
func TestUninstallWithoutHook(t *testing.T) {
	home := t.TempDir()
	content := "export EDITOR=vim\n# comment\n"
	bashrc := writeRC(t, home, ".bashrc", content)
	before, err := os.Stat(bashrc)
	require.NoError(t, err)

	results := NewInstaller(home, "", nil).Uninstall()

	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.False(t, r.Changed)
	}
	assert.Equal(t, content, readFile(t, bashrc))
	after, err := os.Stat(bashrc)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "file should not be rewritten")
}

// Feature: asklog, Property 9: Uninstall removes hooks written by the old formula
func TestUninstallRemovesLegacyBlock(t *testing.T) {
	home := t.TempDir()
	before := "export A=1\n"
	after := "alias g=git\n"
	legacy := "log_terminal_output() {\n  LOG_FILE=\"$HOME/terminal_output.log\"\n  script -q -a -c \"$ZSH_COMMAND\" \"$LOG_FILE\"\n}\ntrap 'log_terminal_output' DEBUG\n"
	zshrc := writeRC(t, home, ".zshrc", before+legacy+after)

	results := NewInstaller(home, "", nil).Uninstall()

	assert.True(t, results[1].Changed)
	assert.Equal(t, before+after, readFile(t, zshrc))
}

func TestUninstallRemovesStrayHookLines(t *testing.T) {
	home := t.TempDir()
	bashrc := writeRC(t, home, ".bashrc",
		"keep me\ntrap 'log_terminal_output' DEBUG\n# <<< asklog terminal logging <<<\nkeep me too\n")

	NewInstaller(home, "", nil).Uninstall()

	assert.Equal(t, "keep me\nkeep me too\n", readFile(t, bashrc))
}

func TestUninstallKeepsContentAfterUnterminatedBlock(t *testing.T) {
	home := t.TempDir()
	// End marker deleted by hand; only hook lines may go.
	bashrc := writeRC(t, home, ".bashrc",
		"# >>> asklog terminal logging v1 >>>\nlog_terminal_output() {\n  LOG_FILE=\"x\"\n  script -q -a -c \"$BASH_COMMAND\" \"$LOG_FILE\"\n}\ntrap 'log_terminal_output' DEBUG\nexport KEEP=1\n")

	NewInstaller(home, "", nil).Uninstall()

	assert.Equal(t, "export KEEP=1\n", readFile(t, bashrc))
}

func TestUninstallTwice(t *testing.T) {
	home := t.TempDir()
	bashrc := writeRC(t, home, ".bashrc", "a\n")
	inst := NewInstaller(home, "", nil)
	inst.Install()

	first := inst.Uninstall()
	second := inst.Uninstall()

	assert.True(t, first[0].Changed)
	assert.False(t, second[0].Changed)
	assert.NoError(t, second[0].Err)
	assert.Equal(t, "a\n", readFile(t, bashrc))
}

func TestStatus(t *testing.T) {
	home := t.TempDir()
	writeRC(t, home, ".bashrc", "")
	inst := NewInstaller(home, "", nil)

	st := inst.Status()
	require.Len(t, st, 2)
	assert.True(t, st[0].Exists)
	assert.False(t, st[0].Installed)
	assert.False(t, st[1].Exists)
	assert.False(t, inst.IsInstalled())

	inst.Install()
	st = inst.Status()
	assert.True(t, st[0].Installed)
	assert.Equal(t, HookVersion, st[0].Version)
	assert.True(t, inst.IsInstalled())
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("zsh")
	require.True(t, ok)
	assert.Equal(t, "ZSH_COMMAND", s.CommandVar)
	assert.Equal(t, "/home/u/.zshrc", s.RCPath("/home/u"))

	_, ok = Lookup("fish")
	assert.False(t, ok)
}
