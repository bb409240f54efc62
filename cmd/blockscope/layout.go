package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/blocks/abi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type shape struct {
	name    string
	payload []abi.Field
}

var shapes = []shape{
	{"stack", abi.BorrowedPayload},
	{"heap", abi.OwnedPayload},
	{"static", abi.NoPayload},
}

func layoutTable(l abi.Layout) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("field", "kind", "offset", "size").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, f := range l.Fields {
		t.Row(f.Name, f.Kind.String(), strconv.FormatUint(uint64(f.Offset), 10), strconv.FormatUint(uint64(f.Size), 10))
	}
	return t.Render()
}

func printLayouts(w io.Writer) {
	for _, target := range abi.Targets {
		fmt.Fprintln(w, titleStyle.Render(target.String()))
		for _, s := range shapes {
			l := abi.Calc(target, s.payload...)
			fmt.Fprintf(w, "\n%s literal: size %d, align %d\n", s.name, l.Size, l.Align)
			fmt.Fprintln(w, layoutTable(l))
		}

		d := abi.DescriptorLayout(target, true, true)
		fmt.Fprintf(w, "\ndescriptor (copy/dispose + signature): size %d\n", d.Size)
		fmt.Fprintln(w, layoutTable(d))
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, helpStyle.Render(fmt.Sprintf("host target: %s", abi.HostTarget())))
}
