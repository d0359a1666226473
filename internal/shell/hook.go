package shell

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

// HookVersion is stamped into the begin marker of every block written.
const HookVersion = 1

const (
	// FunctionName is the shell function the hook defines. Lines containing
	// it are treated as hook lines even without markers, which covers blocks
	// written by the old Homebrew formula.
	FunctionName = "log_terminal_output"

	beginMarkerPrefix = "# >>> asklog terminal logging"
	endMarker         = "# <<< asklog terminal logging <<<"
	legacyFuncStart   = FunctionName + "()"
)

// DefaultLogFile is the shell expression for the log the hook appends to.
const DefaultLogFile = "$HOME/terminal_output.log"

// Shell describes one supported shell and where its hook lives.
type Shell struct {
	Name       string // "bash" | "zsh"
	RCFile     string // startup file relative to $HOME
	CommandVar string // variable holding the command about to run
}

// Shells is the table of shells the installer manages.
var Shells = []Shell{
	{Name: "bash", RCFile: ".bashrc", CommandVar: "BASH_COMMAND"},
	{Name: "zsh", RCFile: ".zshrc", CommandVar: "ZSH_COMMAND"},
}

// Lookup returns the table entry for name.
func Lookup(name string) (Shell, bool) {
	for _, s := range Shells {
		if s.Name == name {
			return s, true
		}
	}
	return Shell{}, false
}

// RCPath returns the absolute startup file path under home.
func (s Shell) RCPath(home string) string {
	return filepath.Join(home, s.RCFile)
}

var hookTemplate = template.Must(template.New("hook").Parse(
	`{{.Begin}}
` + FunctionName + `() {
  LOG_FILE="{{.LogFile}}"
  script -q -a -c "${{.CommandVar}}" "$LOG_FILE"
}
trap '` + FunctionName + `' DEBUG
{{.End}}
`))

// Block renders the hook for s. logFile is a shell expression such as
// DefaultLogFile; empty means the default.
func Block(s Shell, logFile string) string {
	if logFile == "" {
		logFile = DefaultLogFile
	}
	var buf bytes.Buffer
	// The template and its inputs are fixed strings; Execute cannot fail.
	_ = hookTemplate.Execute(&buf, struct {
		Begin, End, LogFile, CommandVar string
	}{
		Begin:      beginMarker(HookVersion),
		End:        endMarker,
		LogFile:    logFile,
		CommandVar: s.CommandVar,
	})
	return buf.String()
}

func beginMarker(version int) string {
	return beginMarkerPrefix + " v" + strconv.Itoa(version) + " >>>"
}

var versionRe = regexp.MustCompile(regexp.QuoteMeta(beginMarkerPrefix) + ` v(\d+)`)

// detect reports whether content carries a hook and which version wrote it.
// A hook without markers (old formula) reports version 0.
func detect(content string) (present bool, version int) {
	if m := versionRe.FindStringSubmatch(content); m != nil {
		v, _ := strconv.Atoi(m[1])
		return true, v
	}
	if strings.Contains(content, beginMarkerPrefix) || strings.Contains(content, FunctionName) {
		return true, 0
	}
	return false, 0
}

// appendBlock returns content with block appended, inserting a newline first
// when the file does not end with one.
func appendBlock(content, block string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + block
}

// stripHook removes every hook line from content: marker-delimited blocks,
// the old formula's unmarked function and trap, and any stray line that
// mentions the hook function. All other lines keep their bytes and order.
func stripHook(content string) (string, bool) {
	lines := splitLines(content)
	out := make([]string, 0, len(lines))
	removed := false

	for i := 0; i < len(lines); i++ {
		text := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(text, beginMarkerPrefix):
			if end := indexLine(lines, i+1, len(lines), func(s string) bool { return s == endMarker }); end >= 0 {
				i = end
			}
			removed = true
		case text == endMarker:
			removed = true
		case strings.HasPrefix(text, legacyFuncStart):
			// The old block is three lines of body and a closing brace.
			if end := indexLine(lines, i+1, i+5, func(s string) bool { return s == "}" }); end >= 0 {
				i = end
			}
			removed = true
		case strings.Contains(lines[i], FunctionName):
			removed = true
		default:
			out = append(out, lines[i])
		}
	}
	return strings.Join(out, ""), removed
}

// indexLine returns the first index in [from, to) whose trimmed text matches.
func indexLine(lines []string, from, to int, match func(string) bool) int {
	if to > len(lines) {
		to = len(lines)
	}
	for j := from; j < to; j++ {
		if match(strings.TrimSpace(lines[j])) {
			return j
		}
	}
	return -1
}

// splitLines splits s into lines, each keeping its terminator.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
