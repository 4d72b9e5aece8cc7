package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/rasterize/internal/convert"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	barFilledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// printProbe renders probe metadata for one file.
func printProbe(path string, result *convert.ProbeResult) {
	fmt.Println(titleStyle.Render(path))
	fmt.Printf("  %s %dx%d\n", labelStyle.Render("dimensions:"), result.Width, result.Height)
	fmt.Printf("  %s %d\n", labelStyle.Render("frames (approx):"), result.ApproxFrameCount)
	fmt.Printf("  %s %v\n", labelStyle.Render("alpha:"), result.HasAlpha)
}

// printResult renders a single-file conversion outcome.
func printResult(res fileResult) {
	if res.err != nil {
		fmt.Printf("%s %s: %v\n", errStyle.Render("✗"), res.path, res.err)
		return
	}

	container := "PNG"
	if res.animated {
		container = fmt.Sprintf("APNG, %d frames", res.frames)
	}
	fmt.Printf("%s %s → %s (%s, %s, %s)\n",
		okStyle.Render("✓"),
		res.path,
		res.outPath,
		container,
		formatBytes(res.size),
		res.duration.Truncate(time.Millisecond),
	)
}

// convertedMsg carries one finished conversion back into the model.
type convertedMsg struct {
	index  int
	result fileResult
}

// batchModel drives sequential conversions with a progress view.
type batchModel struct {
	conv    *convert.Converter
	files   []string
	results []fileResult
	done    int
	aborted bool
}

func newBatchModel(conv *convert.Converter, files []string) batchModel {
	return batchModel{
		conv:    conv,
		files:   files,
		results: make([]fileResult, len(files)),
	}
}

func (m batchModel) Init() tea.Cmd {
	return m.convertCmd(0)
}

func (m batchModel) convertCmd(index int) tea.Cmd {
	path := m.files[index]
	conv := m.conv
	return func() tea.Msg {
		return convertedMsg{index: index, result: convertFile(conv, path, "")}
	}
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = true
			return m, tea.Quit
		}

	case convertedMsg:
		m.results[msg.index] = msg.result
		m.done++
		if m.done == len(m.files) {
			return m, tea.Quit
		}
		return m, m.convertCmd(m.done)
	}

	return m, nil
}

func (m batchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Converting JPEG XL files"))
	b.WriteString("\n\n")

	for i := 0; i < m.done; i++ {
		res := m.results[i]
		if res.err != nil {
			fmt.Fprintf(&b, "  %s %s: %v\n", errStyle.Render("✗"), res.path, res.err)
			continue
		}
		fmt.Fprintf(&b, "  %s %s → %s (%d frames, %s)\n",
			okStyle.Render("✓"), res.path, res.outPath, res.frames, formatBytes(res.size))
	}

	if m.done < len(m.files) && !m.aborted {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("…"), m.files[m.done])
	}

	b.WriteString("\n")
	b.WriteString(renderBar(m.done, len(m.files), 40))
	fmt.Fprintf(&b, " %d/%d", m.done, len(m.files))
	if m.aborted {
		b.WriteString(errStyle.Render("  aborted"))
	}
	b.WriteString("\n")

	return b.String()
}

// failed counts conversions that ended in error.
func (m batchModel) failed() int {
	n := 0
	for i := 0; i < m.done; i++ {
		if m.results[i].err != nil {
			n++
		}
	}
	return n
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total, width int) string {
	if total == 0 {
		return ""
	}
	filled := done * width / total
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// formatBytes renders a byte count for humans.
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
