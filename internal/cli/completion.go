package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/parfor/internal/config"
	"github.com/agbru/parfor/internal/parallel"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every shell script is generated from flagRegistry, so a new flag only
// needs an entry there.
type FlagCompletion struct {
	Long       string   // long flag name without "--"
	Short      string   // short flag without "-"
	Help       string   // description text
	Values     []string // suggested values (nil = boolean or free-form)
	ValueName  string   // label for the value in zsh; empty for boolean flags
	IsFile     bool     // the flag takes a file path
	IsWorkload bool     // values come from the workload registry
}

// flagRegistry is the list of flags offered by completion scripts, in help
// order.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Short: "n", Help: "Number of loop indices", ValueName: "count"},
	{Long: "from", Help: "First loop index", ValueName: "index"},
	{Long: "workload", Help: "Loop body to run", IsWorkload: true, ValueName: "workload"},
	{Long: "strategy", Help: "Partitioning strategy", Values: config.Strategies, ValueName: "strategy"},
	{Long: "min-partition", Help: "Minimum indices per worker", Values: []string{"1", "128", "512", "1024", "8192"}, ValueName: "size"},
	{Long: "parallelism", Help: "Workers the planner divides by", ValueName: "workers"},
	{Long: "max-concurrency", Help: "Partitions running at once", ValueName: "limit"},
	{Long: "executor", Help: "Partition executor", Values: parallel.ExecutorKinds, ValueName: "executor"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"10s", "1m", "5m", "30m"}, ValueName: "duration"},
	{Long: "fail-at", Help: "Fail the loop body at this index", ValueName: "index"},
	{Long: "verbose", Short: "v", Help: "Verbose output"},
	{Long: "details", Short: "d", Help: "Show plan and memory details"},
	{Long: "quiet", Short: "q", Help: "Print only the checksum"},
	{Long: "explain", Help: "Explain the loop plan"},
	{Long: "metrics", Help: "Print loop metrics"},
	{Long: "tui", Help: "Run the interactive dashboard"},
	{Long: "calibrate", Help: "Calibrate the minimum partition size"},
	{Long: "calibration-profile", Help: "Calibration profile file", IsFile: true, ValueName: "file"},
	{Long: "output", Short: "o", Help: "Write a run report to a file", IsFile: true, ValueName: "file"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "log-level", Help: "Log level", Values: []string{"trace", "debug", "info", "warn", "error", "disabled"}, ValueName: "level"},
	{Long: "completion", Help: "Generate completion script", Values: config.CompletionShells, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell.
//
// Parameters:
//   - out: The writer for the script.
//   - shell: One of config.CompletionShells.
//   - workloads: The registered workload names.
//
// Returns:
//   - error: An error if the shell is unsupported or the write fails.
func GenerateCompletion(out io.Writer, shell string, workloads []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(workloads)
	case "zsh":
		script = zshCompletion(workloads)
	case "fish":
		script = fishCompletion(workloads)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: %s)", shell, strings.Join(config.CompletionShells, ", "))
	}
	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func bashCompletion(workloads []string) string {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		names := flagNames(f)
		opts = append(opts, names...)

		var body string
		switch {
		case f.IsWorkload:
			body = `COMPREPLY=( $(compgen -W "${workloads}" -- "${cur}") )`
		case f.IsFile:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case len(f.Values) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(names, "|"), body)
	}

	return fmt.Sprintf(`# Bash completion script for parfor
# Add this to your ~/.bashrc or ~/.bash_completion

_parfor_completions() {
    local cur prev opts workloads
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    workloads="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _parfor_completions parfor
`, strings.Join(opts, " "), strings.Join(workloads, " "), cases.String())
}

func zshCompletion(workloads []string) string {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	return fmt.Sprintf(`#compdef parfor

# Zsh completion script for parfor
# Add this to your ~/.zshrc or place in $fpath

_parfor() {
    local -a workloads
    workloads=(%s)

    _arguments -s \
%s
}

_parfor "$@"
`, strings.Join(workloads, " "), strings.Join(args, " \\\n"))
}

// zshArgEntry formats f as a zsh _arguments spec.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsWorkload:
		valueSuffix = fmt.Sprintf(":%s:($workloads)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	if f.Long != "" {
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '-%s[%s]%s'", f.Short, f.Help, valueSuffix)
}

func fishCompletion(workloads []string) string {
	lines := []string{
		"# Fish completion script for parfor",
		"# Add this to ~/.config/fish/completions/parfor.fish",
		"",
		"complete -c parfor -f",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f, workloads))
	}
	return strings.Join(lines, "\n") + "\n"
}

// fishCompleteLine formats f as a fish complete command.
func fishCompleteLine(f FlagCompletion, workloads []string) string {
	parts := []string{"complete -c parfor"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsWorkload:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(workloads, " ")))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
