package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/parfor/internal/config"
	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/format"
	"github.com/agbru/parfor/internal/metrics"
	"github.com/agbru/parfor/internal/orchestration"
	"github.com/agbru/parfor/internal/parallel"
	"github.com/agbru/parfor/internal/sysmon"
	"github.com/agbru/parfor/internal/workload"
)

// Layout constants for the dashboard.
const (
	tickInterval    = 500 * time.Millisecond
	historySize     = 40
	defaultBarWidth = 40
	minBarWidth     = 10
	labelWidth      = 12
)

// runRow is the dashboard state of one strategy.
type runRow struct {
	strategy orchestration.Strategy
	value    float64
}

// ExecutionState holds what the current batch is running with.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	loop       *parallel.Loop
	workload   workload.Workload
	strategies []orchestration.Strategy
	generation uint64
	done       bool
	exitCode   int
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	ExecutionState

	keymap  KeyMap
	help    help.Model
	spinner spinner.Model
	bar     progressbar.Model

	rows    []runRow
	avg     float64
	eta     time.Duration
	results []orchestration.RunResult
	final   *FinalResultMsg
	err     error

	cpu        *RingBuffer
	mem        *RingBuffer
	heap       uint64
	numGC      uint32
	goroutines int
	collector  *metrics.MemoryCollector

	start   time.Time
	end     time.Time
	width   int
	paused  bool
	version string

	parentCtx context.Context
	config    config.AppConfig
	ref       *programRef
}

// NewModel creates a dashboard that runs w with every strategy cfg selects.
func NewModel(parentCtx context.Context, loop *parallel.Loop, w workload.Workload, cfg config.AppConfig, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	strategies := orchestration.StrategiesFor(cfg)

	return Model{
		ExecutionState: ExecutionState{
			ctx:        ctx,
			cancel:     cancel,
			loop:       loop,
			workload:   w,
			strategies: strategies,
			exitCode:   apperrors.ExitSuccess,
		},
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:       progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(defaultBarWidth), progressbar.WithoutPercentage()),
		rows:      newRows(strategies),
		cpu:       NewRingBuffer(historySize),
		mem:       NewRingBuffer(historySize),
		collector: metrics.NewMemoryCollector(),
		start:     time.Now(),
		version:   version,
		parentCtx: parentCtx,
		config:    cfg,
		ref:       &programRef{},
	}
}

func newRows(strategies []orchestration.Strategy) []runRow {
	rows := make([]runRow, len(strategies))
	for i, s := range strategies {
		rows[i] = runRow{strategy: s}
	}
	return rows
}

// Init starts the first batch and the periodic samplers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(),
		startRunsCmd(m.ref, m.ctx, m.loop, m.workload, m.strategies, m.config, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.bar.Width = max(minBarWidth, min(defaultBarWidth, msg.Width-labelWidth-20))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		if msg.Generation != m.generation || m.paused {
			return m, nil
		}
		if msg.RunIndex >= 0 && msg.RunIndex < len(m.rows) {
			m.rows[msg.RunIndex].value = msg.Value
		}
		m.avg, m.eta = msg.AverageProgress, msg.ETA
		return m, nil

	case ComparisonResultsMsg:
		if msg.Generation == m.generation {
			m.results = msg.Results
		}
		return m, nil

	case FinalResultMsg:
		if msg.Generation == m.generation {
			m.final = &msg
			if len(m.results) == 0 {
				m.results = []orchestration.RunResult{msg.Result}
			}
		}
		return m, nil

	case ErrorMsg:
		if msg.Generation == m.generation {
			m.err = msg.Err
		}
		return m, nil

	case RunsCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.end = time.Now()
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		if !m.done {
			m.done = true
			m.end = time.Now()
			m.exitCode = contextExitCode(msg.Err)
		}
		return m, tea.Quit

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleSysStatsCmd(), sampleMemStatsCmd(m.collector), tickCmd())

	case SysStatsMsg:
		m.cpu.Push(msg.CPUPercent)
		m.mem.Push(msg.MemPercent)
		return m, nil

	case MemStatsMsg:
		m.heap, m.numGC, m.goroutines = msg.HeapAlloc, msg.NumGC, msg.NumGoroutine
		return m, nil
	}

	return m, nil
}

func contextExitCode(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ExitErrorTimeout
	}
	return apperrors.ExitErrorCanceled
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		if !m.done {
			m.done = true
			m.exitCode = apperrors.ExitErrorCanceled
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Rerun):
		m.cancel()
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)
		m.rows = newRows(m.strategies)
		m.avg, m.eta = 0, 0
		m.results, m.final, m.err = nil, nil, nil
		m.done, m.paused = false, false
		m.exitCode = apperrors.ExitSuccess
		m.start, m.end = time.Now(), time.Time{}
		m.cpu.Reset()
		m.mem.Reset()
		return m, tea.Batch(
			tickCmd(),
			startRunsCmd(m.ref, m.ctx, m.loop, m.workload, m.strategies, m.config, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	sections := []string{
		m.headerView(),
		panelStyle.Render(m.runsView()),
		panelStyle.Render(m.hostView()),
	}
	if outcome := m.outcomeView(); outcome != "" {
		sections = append(sections, panelStyle.Render(outcome))
	}
	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) elapsed() time.Duration {
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

func (m Model) headerView() string {
	title := "parfor dashboard"
	if m.version != "" && m.version != "dev" {
		title += " " + m.version
	}

	var status string
	switch {
	case m.done && m.err != nil:
		status = errorStyle.Bold(true).Render("FAILED")
	case m.done:
		status = statusDoneStyle.Render("DONE")
	case m.paused:
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = m.spinner.View() + statusRunningStyle.Render("RUNNING")
	}

	info := fmt.Sprintf(" | %s over [%s, %s) | elapsed %s | ",
		m.config.Workload, format.FormatCount(m.config.From), format.FormatCount(m.config.From+m.config.N),
		format.FormatExecutionDuration(m.elapsed()))
	return titleStyle.Render(title) + dimStyle.Render(info) + status
}

func (m Model) runsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Strategies"))
	b.WriteString("\n")
	for _, row := range m.rows {
		name := fmt.Sprintf("%-*s", labelWidth, row.strategy.Name)
		fmt.Fprintf(&b, "%s %s %6.2f%%  %s\n",
			labelStyle.Render(name), m.bar.ViewAs(row.value), row.value*100, m.rowStatus(row.strategy.Name))
	}
	fmt.Fprintf(&b, "%s %s", labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "overall")),
		valueStyle.Render(format.FormatProgressBarWithETA(m.avg, m.eta, m.bar.Width)))
	return b.String()
}

// rowStatus describes the outcome of the named strategy once known.
func (m Model) rowStatus(name string) string {
	for _, res := range m.results {
		if res.Strategy.Name != name {
			continue
		}
		if res.Err != nil {
			return errorStyle.Render("failed")
		}
		plan := res.Decision.Mode.String()
		if res.Decision.ChunkSize > 0 {
			plan = fmt.Sprintf("%s/%d", plan, res.Decision.ChunkSize)
		}
		return successStyle.Render(fmt.Sprintf("%s %s", format.FormatExecutionDuration(res.Duration), plan))
	}
	return ""
}

func (m Model) hostView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Host"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s %5.1f%%\n", labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "cpu")),
		cpuSparklineStyle.Render(RenderSparkline(m.cpu.Slice())), m.cpu.Last())
	fmt.Fprintf(&b, "%s %s %5.1f%%\n", labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "memory")),
		memSparklineStyle.Render(RenderSparkline(m.mem.Slice())), m.mem.Last())
	fmt.Fprintf(&b, "%s %s  %s %d  %s %d",
		labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, "heap")), valueStyle.Render(format.FormatBytes(m.heap)),
		labelStyle.Render("goroutines"), m.goroutines,
		labelStyle.Render("gc"), m.numGC)
	return b.String()
}

func (m Model) outcomeView() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(fmt.Sprintf("No strategy completed the loop: %v", m.err))
	case m.final != nil:
		res := m.final.Result
		return fmt.Sprintf("%s %s  %s %s  %s %d",
			labelStyle.Render("best"), valueStyle.Render(res.Strategy.Name),
			labelStyle.Render("time"), valueStyle.Render(format.FormatExecutionDuration(res.Duration)),
			labelStyle.Render("checksum"), res.Checksum)
	case m.done && m.exitCode == apperrors.ExitErrorMismatch:
		return errorStyle.Render("Checksums differ between strategies")
	}
	return ""
}

// Run shows the dashboard until the user quits and returns the exit code of
// the last batch.
func Run(ctx context.Context, loop *parallel.Loop, w workload.Workload, cfg config.AppConfig, version string) int {
	initTUIStyles()

	model := NewModel(ctx, loop, w, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startRunsCmd runs one batch and reports its exit code.
func startRunsCmd(ref *programRef, ctx context.Context, loop *parallel.Loop, w workload.Workload, strategies []orchestration.Strategy, cfg config.AppConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, gen: gen}
		presenter := &TUIResultPresenter{ref: ref, gen: gen}

		results := orchestration.ExecuteRuns(ctx, loop, w, strategies, cfg, reporter, io.Discard)
		opts := orchestration.PresentationOptions{
			Workload: cfg.Workload,
			From:     cfg.From,
			N:        cfg.N,
			Verbose:  cfg.Verbose,
			Details:  cfg.Details,
		}
		code := orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, io.Discard)
		return RunsCompleteMsg{ExitCode: code, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd(c *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		s := c.Snapshot()
		return MemStatsMsg{HeapAlloc: s.HeapAlloc, NumGC: s.NumGC, NumGoroutine: s.NumGoroutine}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd reports when ctx is done.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
