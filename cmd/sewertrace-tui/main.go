package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tmh-gis/sewertrace/pkg/config"
	"github.com/tmh-gis/sewertrace/pkg/network"
	"github.com/tmh-gis/sewertrace/pkg/record"
	"github.com/tmh-gis/sewertrace/pkg/trace"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			MarginLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			MarginLeft(1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			MarginLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(1)

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			MarginLeft(1)
)

type model struct {
	graph     *network.Graph
	direction network.Direction
	input     textinput.Model
	results   table.Model
	status    string
	errMsg    string
	warnings  []string
	haveTrace bool
}

func newModel(g *network.Graph) model {
	ti := textinput.New()
	ti.Placeholder = "seed pipe ids, comma separated"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	cols := []table.Column{
		{Title: "Pipe", Width: 16},
		{Title: "Start", Width: 14},
		{Title: "End", Width: 14},
		{Title: "Branches", Width: 8},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(14),
	)

	return model{
		graph:     g,
		direction: network.Upstream,
		input:     ti,
		results:   t,
		status:    fmt.Sprintf("loaded %d pipes, %d nodes", g.PipeCount(), g.NodeCount()),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.direction == network.Upstream {
				m.direction = network.Downstream
			} else {
				m.direction = network.Upstream
			}
			return m, nil
		case "enter":
			m.runTrace()
			return m, nil
		case "up", "down":
			if m.haveTrace {
				var cmd tea.Cmd
				m.results, cmd = m.results.Update(msg)
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) runTrace() {
	m.errMsg = ""
	m.warnings = nil

	seeds := parseSeeds(m.input.Value())
	if len(seeds) == 0 {
		m.errMsg = "enter at least one seed pipe id"
		return
	}

	res, err := trace.Run(m.graph, seeds, trace.Options{Direction: m.direction})
	if err != nil {
		m.errMsg = err.Error()
		return
	}

	rows := make([]table.Row, 0, len(res.Pipes))
	for _, id := range res.Pipes {
		p, _ := m.graph.Pipe(id)
		rows = append(rows, table.Row{
			string(p.ID),
			string(p.StartNode),
			string(p.EndNode),
			fmt.Sprintf("%d", len(m.graph.Branches(id))),
		})
	}
	m.results.SetRows(rows)
	m.haveTrace = true
	m.warnings = res.WarningStrings()
	m.status = fmt.Sprintf("%s trace: %d pipes, %d branches, %d parcels in %v",
		res.Summary.Direction, len(res.Pipes), len(res.Branches), len(res.Parcels), res.Summary.Elapsed)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sewertrace — network trace browser"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(" direction: %s\n", m.direction))
	b.WriteString(" seeds: " + m.input.View() + "\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("error: " + m.errMsg))
		b.WriteString("\n")
	}
	for _, w := range m.warnings {
		b.WriteString(warnStyle.Render("warning: " + w))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")

	if m.haveTrace {
		b.WriteString(tableStyle.Render(m.results.View()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: trace • tab: toggle direction • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func main() {
	pipesFile := flag.String("pipes", "", "Path to pipes CSV")
	branchesFile := flag.String("branches", "", "Path to branches CSV (optional)")
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	if *pipesFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: sewertrace-tui --pipes pipes.csv [--branches branches.csv]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	adapter := record.NewAdapter(
		record.WithFieldMap(cfg.Fields),
		record.WithNullNodeSentinels(cfg.NullNodes...),
	)

	pipeRows, err := record.ReadCSVFile(*pipesFile)
	if err != nil {
		log.Fatalf("failed to read pipes: %v", err)
	}
	pipes, _ := adapter.Pipes(pipeRows)

	var branches []network.Branch
	if *branchesFile != "" {
		branchRows, err := record.ReadCSVFile(*branchesFile)
		if err != nil {
			log.Fatalf("failed to read branches: %v", err)
		}
		branches, _ = adapter.Branches(branchRows)
	}

	g, _ := network.Build(filepath.Base(*pipesFile), pipes, branches)
	if g.PipeCount() == 0 {
		log.Fatal("no valid pipes in input")
	}

	if _, err := tea.NewProgram(newModel(g)).Run(); err != nil {
		log.Fatalf("tui failed: %v", err)
	}
}

func parseSeeds(s string) []network.PipeID {
	parts := strings.Split(s, ",")
	out := make([]network.PipeID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, network.PipeID(p))
		}
	}
	return out
}
