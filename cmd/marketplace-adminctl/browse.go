package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

const (
	maxColumnWidth = 32
	tableHeight    = 12
)

type browseMode int

const (
	modeBrowse browseMode = iota
	modeJump
	modeConfirmDelete
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	currentStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	pageStyle    = lipgloss.NewStyle().Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// opDoneMsg reports that one controller operation finished. Overlapping
// operations are resolved by the controller, so the model only re-reads the
// snapshot.
type opDoneMsg struct{ err error }

// browseModel hosts one long-lived pagination controller for a resource.
type browseModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	svc  *service.ResourceService
	ep   resource.Endpoint
	ctl  *listing.Controller[resource.Row]
	view listing.View[resource.Row]

	table   table.Model
	spinner spinner.Model
	jump    textinput.Model

	mode          browseMode
	pendingDelete string
	inflight      int
	status        string
	closed        bool
}

func newBrowseModel(parent context.Context, svc *service.ResourceService, name string, q service.ViewQuery) (browseModel, error) {
	ep, err := svc.Endpoint(name)
	if err != nil {
		return browseModel{}, err
	}
	ctl, err := svc.NewListView(name, q)
	if err != nil {
		return browseModel{}, err
	}

	ctx, cancel := context.WithCancel(parent)

	ji := textinput.New()
	ji.Placeholder = "page number"
	ji.CharLimit = 6
	ji.Width = 12

	m := browseModel{
		ctx:     ctx,
		cancel:  cancel,
		svc:     svc,
		ep:      ep,
		ctl:     ctl,
		table:   table.New(table.WithFocused(true), table.WithHeight(tableHeight)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		jump:    ji,
		// Init's mount.
		inflight: 1,
	}
	m.view = ctl.Snapshot()
	return m, nil
}

// Init mounts the controller. newBrowseModel already counts the mount as
// in flight.
func (m browseModel) Init() tea.Cmd {
	return m.launch(m.ctl.Mount)
}

// run launches op against the controller off the event loop.
func (m *browseModel) run(op func(context.Context) error) tea.Cmd {
	m.inflight++
	return m.launch(op)
}

func (m browseModel) launch(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return tea.Batch(
		func() tea.Msg { return opDoneMsg{err: op(ctx)} },
		m.spinner.Tick,
	)
}

// Update handles messages.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		m.inflight = max(m.inflight-1, 0)
		m.status = statusFor(msg.err)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeJump:
			return m.updateJump(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m browseModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.shutdown()
		return m, tea.Quit
	case "n", "right", "l":
		cmd := m.run(m.ctl.Next)
		return m, cmd
	case "p", "left", "h":
		cmd := m.run(m.ctl.Prev)
		return m, cmd
	case "r":
		cmd := m.run(m.ctl.Reload)
		return m, cmd
	case "g":
		m.mode = modeJump
		m.jump.SetValue("")
		cmd := m.jump.Focus()
		return m, cmd
	case "d":
		id := m.selectedID()
		if id == "" || !m.ep.CanRemove() {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.pendingDelete = id
		return m, nil
	case "t":
		return m.toggleSelected()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.jump.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.jump.Blur()
		n, err := strconv.Atoi(strings.TrimSpace(m.jump.Value()))
		if err != nil {
			m.status = errorStyle.Render("Not a page number: " + m.jump.Value())
			return m, nil
		}
		cmd := m.run(func(ctx context.Context) error { return m.ctl.Jump(ctx, n) })
		return m, cmd
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m browseModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingDelete
	m.mode = modeBrowse
	m.pendingDelete = ""
	if msg.String() != "y" {
		return m, nil
	}
	action := m.svc.DeleteAction(m.ep.Name, id, true)
	cmd := m.run(func(ctx context.Context) error { return m.ctl.Act(ctx, action) })
	return m, cmd
}

// toggleSelected flips the first toggle cell of the selected row.
func (m browseModel) toggleSelected() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.view.Table.Rows) {
		return m, nil
	}
	row := m.view.Table.Rows[idx]
	for _, c := range row.Cells {
		if c.Toggle == nil {
			continue
		}
		value := "1"
		if c.Toggle.On {
			value = "0"
		}
		action := m.svc.CustomAction(m.ep.Name, row.ID, c.Toggle.Action, map[string]any{"status": value})
		cmd := m.run(func(ctx context.Context) error { return m.ctl.Act(ctx, action) })
		return m, cmd
	}
	return m, nil
}

func (m *browseModel) selectedID() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.view.Table.Rows) {
		return ""
	}
	return m.view.Table.Rows[idx].ID
}

// refresh re-reads the controller snapshot into the table.
func (m *browseModel) refresh() {
	m.view = m.ctl.Snapshot()
	cols, rows := tableData(m.view.Table)
	// Columns first: bubbles/table renders rows against the current columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *browseModel) shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	m.ctl.Close()
}

// statusFor only reports what the snapshot cannot show; load and action
// failures already surface there.
func statusFor(err error) string {
	if errors.Is(err, listing.ErrNoCredential) {
		return errorStyle.Render("No API token: set MARKETPLACE_API_TOKEN.")
	}
	return ""
}

func tableData(t listing.Table) ([]table.Column, []table.Row) {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h.Label)
	}
	rows := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make(table.Row, len(t.Headers))
		for i := range t.Headers {
			if i < len(r.Cells) {
				row[i] = cellText(r.Cells[i])
			}
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
		rows = append(rows, row)
	}
	cols := make([]table.Column, len(t.Headers))
	for i, h := range t.Headers {
		cols[i] = table.Column{Title: h.Label, Width: min(widths[i], maxColumnWidth)}
	}
	return cols, rows
}

// View renders the screen.
func (m browseModel) View() string {
	var b strings.Builder

	title := m.ep.Title
	if title == "" {
		title = m.ep.Name
	}
	b.WriteString(titleStyle.Render(title))
	if m.inflight > 0 {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	state := m.view.State
	switch {
	case state.IsError():
		b.WriteString(errorStyle.Render(state.Message) + "  " + helpStyle.Render("(r to retry)") + "\n")
	case state.IsIdle() && m.inflight == 0:
		b.WriteString(helpStyle.Render("Nothing loaded.") + "\n")
	case m.view.Table.Empty() && state.IsSuccess():
		b.WriteString("No records found.\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}

	b.WriteString("\n" + renderPager(m.view.Window) + "\n")

	if n := m.view.Notice; n != nil {
		style := successStyle
		if n.Kind == listing.NoticeError {
			style = errorStyle
		}
		b.WriteString(style.Render(n.Message) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	switch m.mode {
	case modeJump:
		b.WriteString("Go to page: " + m.jump.View() + "\n")
	case modeConfirmDelete:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %s %s? [y/N]", m.ep.Name, m.pendingDelete)) + "\n")
	default:
		b.WriteString(helpStyle.Render("n/p page  g jump  r reload  t toggle  d delete  q quit") + "\n")
	}
	return b.String()
}

// renderPager draws the same page window the web console links.
func renderPager(w listing.Window) string {
	if w.Single() {
		return pageStyle.Render(fmt.Sprintf("Page %d of %d", w.Current, max(w.Last, 1)))
	}
	parts := make([]string, 0, len(w.Pages)+6)
	if w.HasPrev {
		parts = append(parts, pageStyle.Render("‹"))
	}
	if w.ShowFirst {
		parts = append(parts, pageStyle.Render("1"))
	}
	if w.LeadingEllipsis {
		parts = append(parts, "…")
	}
	for _, p := range w.Pages {
		if p == w.Current {
			parts = append(parts, currentStyle.Render(strconv.Itoa(p)))
			continue
		}
		parts = append(parts, pageStyle.Render(strconv.Itoa(p)))
	}
	if w.TrailingEllipsis {
		parts = append(parts, "…")
	}
	if w.ShowLast {
		parts = append(parts, pageStyle.Render(strconv.Itoa(w.Last)))
	}
	if w.HasNext {
		parts = append(parts, pageStyle.Render("›"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...) + "  " +
		helpStyle.Render(fmt.Sprintf("Page %d of %d", w.Current, w.Last))
}

func runBrowse(cmdCtx *commandContext, args []string) error {
	pos, rest, err := positional(args, 1, "browse <resource> [-page N] [-parent ID]")
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	page := fs.Int("page", 1, "Page to start on")
	parent := fs.String("parent", "", "Parent id for nested resources")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	svc, cleanup, err := cmdCtx.resourceService()
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := newBrowseModel(cmdCtx.Ctx, svc, pos[0], service.ViewQuery{Page: *page, Parent: *parent})
	if err != nil {
		return err
	}
	defer m.shutdown()

	// The copy Run returns shares ctl and cancel with m, so one shutdown covers both.
	if _, err := tea.NewProgram(m, tea.WithContext(cmdCtx.Ctx), tea.WithAltScreen()).Run(); err != nil &&
		!errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
