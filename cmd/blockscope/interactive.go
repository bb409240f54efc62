package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/wasmblock"
)

var (
	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

type blockInfo struct {
	name     string
	params   []wit.Type
	result   wit.Type
	ptr      uint32
	released bool
}

type interactiveModel struct {
	err      error
	cfg      *blocks.Config
	rt       *wasmblock.Runtime
	result   string
	blocks   []blockInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectBlock modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(cfg *blocks.Config) *interactiveModel {
	return &interactiveModel{
		cfg:   cfg,
		state: stateSelectBlock,
	}
}

type loadedMsg struct {
	err    error
	rt     *wasmblock.Runtime
	blocks []blockInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadRuntime
}

func (m *interactiveModel) loadRuntime() tea.Msg {
	ctx := context.Background()

	rt, err := wasmblock.New(ctx, m.cfg)
	if err != nil {
		return loadedMsg{err: err}
	}

	calls := int64(0)
	builders := []struct {
		info  blockInfo
		build func() (uint32, error)
	}{
		{
			blockInfo{name: "add", params: []wit.Type{wit.S32{}, wit.S32{}}, result: wit.S32{}},
			func() (uint32, error) { return wasmblock.NewBlock2(rt, func(a, b int32) int32 { return a + b }) },
		},
		{
			blockInfo{name: "scale", params: []wit.Type{wit.F64{}, wit.F64{}}, result: wit.F64{}},
			func() (uint32, error) { return wasmblock.NewBlock2(rt, func(x, k float64) float64 { return x * k }) },
		},
		{
			blockInfo{name: "is_even", params: []wit.Type{wit.U32{}}, result: wit.Bool{}},
			func() (uint32, error) { return wasmblock.NewBlock1(rt, func(n uint32) bool { return n%2 == 0 }) },
		},
		{
			blockInfo{name: "clamp", params: []wit.Type{wit.S64{}, wit.S64{}, wit.S64{}}, result: wit.S64{}},
			func() (uint32, error) {
				return wasmblock.NewBlock3(rt, func(v, lo, hi int64) int64 { return min(max(v, lo), hi) })
			},
		},
		{
			blockInfo{name: "counter", result: wit.S64{}},
			func() (uint32, error) {
				return wasmblock.NewBlock0(rt, func() int64 {
					calls++
					return calls
				})
			},
		},
		{
			blockInfo{name: "answer (static)", result: wit.S32{}},
			func() (uint32, error) {
				return rt.Static(0, func(context.Context, uint32, []uint64) uint64 {
					return wasmblock.Lower(int32(42))
				})
			},
		},
	}

	var infos []blockInfo
	for _, b := range builders {
		p, err := b.build()
		if err != nil {
			rt.Close(ctx)
			return loadedMsg{err: err}
		}
		b.info.ptr = p
		infos = append(infos, b.info)
	}

	return loadedMsg{rt: rt, blocks: infos}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.rt != nil {
				m.rt.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectBlock && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectBlock && m.selected < len(m.blocks)-1 {
				m.selected++
			}

		case "c":
			if m.state == stateSelectBlock {
				return m, m.retainBlock
			}

		case "r":
			if m.state == stateSelectBlock {
				return m, m.releaseBlock
			}

		case "enter":
			switch m.state {
			case stateSelectBlock:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.invokeBlock
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.invokeBlock

			case stateShowResult:
				m.state = stateSelectBlock
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectBlock
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectBlock
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.blocks = msg.blocks

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	b := m.blocks[m.selected]
	m.inputs = make([]textinput.Model, len(b.params))
	for i, p := range b.params {
		ti := textinput.New()
		ti.Placeholder = wasmblock.TypeName(p)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) invokeBlock() tea.Msg {
	b := m.blocks[m.selected]
	args := make([]uint64, len(m.inputs))
	for i, input := range m.inputs {
		v, err := wasmblock.ParseValue(input.Value(), b.params[i])
		if err != nil {
			return callResultMsg{err: err}
		}
		args[i] = v
	}

	v, err := m.rt.Invoke(context.Background(), b.ptr, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: wasmblock.FormatValue(v, b.result)}
}

func (m *interactiveModel) retainBlock() tea.Msg {
	b := m.blocks[m.selected]
	if _, err := m.rt.Copy(b.ptr); err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: m.describe(b)}
}

func (m *interactiveModel) releaseBlock() tea.Msg {
	b := &m.blocks[m.selected]
	if b.released {
		return callResultMsg{err: fmt.Errorf("%s already disposed", b.name)}
	}
	if err := m.rt.Release(context.Background(), b.ptr); err != nil {
		return callResultMsg{err: err}
	}
	info, err := m.rt.Inspect(b.ptr)
	if err == nil && info.Payload == 0 {
		b.released = true
		return callResultMsg{result: b.name + " disposed"}
	}
	return callResultMsg{result: m.describe(*b)}
}

func (m *interactiveModel) describe(b blockInfo) string {
	if b.released {
		return "disposed"
	}
	info, err := m.rt.Inspect(b.ptr)
	if err != nil {
		return err.Error()
	}
	return info.String()
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.blocks) == 0 {
		return "Starting wasm32 runtime..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Block Scope"))
	b.WriteString(" wasm32\n\n")

	switch m.state {
	case stateSelectBlock:
		b.WriteString("Select a block:\n\n")
		for i, blk := range m.blocks {
			line := m.formatBlock(blk)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter invoke • c retain • r release • q quit"))

	case stateInputArgs:
		blk := m.blocks[m.selected]
		b.WriteString(fmt.Sprintf("Invoking %s\n\n", funcStyle.Render(blk.name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(wasmblock.TypeName(blk.params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter invoke • esc back"))

	case stateShowResult:
		blk := m.blocks[m.selected]
		b.WriteString(fmt.Sprintf("%s:\n\n", funcStyle.Render(blk.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatBlock(blk blockInfo) string {
	var params []string
	for _, p := range blk.params {
		params = append(params, typeStyle.Render(wasmblock.TypeName(p)))
	}
	sig := funcStyle.Render(blk.name) + "(" + strings.Join(params, ", ") + ") -> " + typeStyle.Render(wasmblock.TypeName(blk.result))
	if blk.released {
		return sig + " " + dimStyle.Render("disposed")
	}
	if info, err := m.rt.Inspect(blk.ptr); err == nil {
		sig += " " + dimStyle.Render(fmt.Sprintf("%s rc=%d @%#x", info.Class, info.Refcount, info.Addr))
	}
	return sig
}

func runInteractive(cfg *blocks.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
