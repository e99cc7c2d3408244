package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hlbc-go/hlbc/internal/bytecode"
	"github.com/hlbc-go/hlbc/internal/decompiler"
)

// browserItem is one entry in the list: either a loose function or a class.
type browserItem struct {
	title, desc, body string
}

func (i browserItem) Title() string       { return i.title }
func (i browserItem) Description() string { return i.desc }
func (i browserItem) FilterValue() string { return i.title }

var (
	detailStyle = lipgloss.NewStyle().Padding(1, 2)
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// browserModel is a bubbletea.Model alternating between a list of
// decompiled units and a full-body view of whichever one is selected, the
// same master/detail shape a REPL alternates between prompt and
// multi-line paste mode.
type browserModel struct {
	list    list.Model
	body    string
	showing bool
}

func newBrowserModel(result *decompiler.ModuleResult) browserModel {
	items := browserItems(result)
	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = fmt.Sprintf("hlbc — session %s", result.Session)
	return browserModel{list: l}
}

func browserItems(result *decompiler.ModuleResult) []list.Item {
	refs := make([]bytecode.RefFun, 0, len(result.Functions))
	for ref := range result.Functions {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(a, b int) bool { return refs[a] < refs[b] })

	items := make([]list.Item, 0, len(refs)+len(result.Classes))
	for _, ref := range refs {
		stmts := result.Functions[ref]
		lines := make([]string, len(stmts))
		for i, s := range stmts {
			lines[i] = s.String()
		}
		items = append(items, browserItem{
			title: fmt.Sprintf("fn#%d", ref),
			desc:  fmt.Sprintf("%d statement(s)", len(stmts)),
			body:  strings.Join(lines, "\n"),
		})
	}
	for _, c := range result.Classes {
		var b strings.Builder
		fmt.Fprintf(&b, "class %s\n", c.Name)
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "  field %s\n", f.Name)
		}
		for _, m := range c.Methods {
			fmt.Fprintf(&b, "  method fn#%d (%d statement(s))\n", m.Fun, len(m.Statements))
			for _, s := range m.Statements {
				fmt.Fprintf(&b, "    %s\n", s.String())
			}
		}
		items = append(items, browserItem{
			title: c.Name,
			desc:  fmt.Sprintf("%d field(s), %d method(s)", len(c.Fields), len(c.Methods)),
			body:  b.String(),
		})
	}
	return items
}

func (m browserModel) Init() tea.Cmd { return nil }

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(browserItem); ok {
				m.body = it.body
				m.showing = true
			}
			return m, nil
		case "esc":
			m.showing = false
			return m, nil
		}
	}
	if m.showing {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	if m.showing {
		return detailStyle.Render(m.body) + "\n" + hintStyle.Render("esc: back  q: quit")
	}
	return m.list.View()
}
