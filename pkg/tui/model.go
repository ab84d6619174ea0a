// Package tui renders the series list in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/labworks/seriesdesk/pkg/series"
	"github.com/labworks/seriesdesk/pkg/seriesview"
)

// chromeHeight is the number of rows taken by everything around the card
// viewport: header, search, status, pager and help.
const chromeHeight = 10

type stateMsg seriesview.ViewState

// Model is the series browser screen. Navigation state lives in an in-memory
// path history, and the card viewport stops scrolling while a fetch holds the
// scroll lock.
type Model struct {
	ctx       context.Context
	ctrl      *seriesview.Controller
	history   *seriesview.PathHistory
	lock      *seriesview.CountingLock
	box       *mailbox
	pageParam string

	styles   *Styles
	keys     KeyMap
	help     help.Model
	search   textinput.Model
	pager    paginator.Model
	viewport viewport.Model
	spinner  spinner.Model

	state     seriesview.ViewState
	cursor    int
	cardSpans [][2]int
	detail    *series.Item
	width     int
	height    int
}

// New builds the browser for the given page route parameter. Nothing is
// fetched until Init runs.
func New(ctx context.Context, fetcher seriesview.Fetcher, pageParam string) *Model {
	history := seriesview.NewPathHistory()
	lock := &seriesview.CountingLock{}
	box := newMailbox()
	ctrl := seriesview.New(fetcher, seriesview.Options{
		History:    history,
		ScrollLock: lock,
		OnChange:   box.put,
	})

	st := NewStyles()

	search := textinput.New()
	search.Placeholder = "Search series..."
	search.Prompt = "🔍 "
	search.CharLimit = 64

	pager := paginator.New()
	pager.PerPage = series.PageSize
	pager.ActiveDot = lipgloss.NewStyle().Foreground(st.Primary).Render("•")
	pager.InactiveDot = st.MutedText.Render("•")
	pager.ArabicFormat = "page %d of %d"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(st.Primary)

	return &Model{
		ctx:       ctx,
		ctrl:      ctrl,
		history:   history,
		lock:      lock,
		box:       box,
		pageParam: pageParam,
		styles:    st,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		search:    search,
		pager:     pager,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
	}
}

func (m *Model) Init() tea.Cmd {
	m.ctrl.Mount(m.ctx, m.pageParam)
	return tea.Batch(m.spinner.Tick, m.listen())
}

// listen waits for the next controller snapshot.
func (m *Model) listen() tea.Cmd {
	ctx, box := m.ctx, m.box
	return func() tea.Msg {
		s, ok := box.take(ctx)
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case stateMsg:
		m.applyState(seriesview.ViewState(msg))
		return m, m.listen()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.viewport.Width = width
	m.viewport.Height = max(3, height-chromeHeight)
	m.search.Width = max(10, width-6)
	m.refreshCards()
}

// applyState takes a controller snapshot, ignoring any older than the one
// already shown.
func (m *Model) applyState(s seriesview.ViewState) {
	if s.Version < m.state.Version {
		return
	}
	freshPage := s.Response != m.state.Response
	m.state = s

	m.pager.TotalPages = max(1, s.PageCount)
	m.pager.Page = min(max(0, s.CurrentPage), m.pager.TotalPages-1)
	if m.pager.TotalPages > 10 {
		m.pager.Type = paginator.Arabic
	} else {
		m.pager.Type = paginator.Dots
	}

	if freshPage {
		m.cursor = 0
		m.viewport.GotoTop()
	}
	m.refreshCards()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.detail != nil {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.closeDetail()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.PrevPage):
		if !m.pager.OnFirstPage() {
			m.changePage(m.pager.Page - 1)
		}
	case key.Matches(msg, m.keys.NextPage):
		if !m.pager.OnLastPage() {
			m.changePage(m.pager.Page + 1)
		}
	case key.Matches(msg, m.keys.JumpPage):
		n, err := strconv.Atoi(msg.String())
		if err == nil && n <= m.pager.TotalPages {
			m.changePage(n - 1)
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Open):
		m.openSelected()
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.search.Blur()
		return m, nil
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != prev {
		m.ctrl.ChangeSearch(m.ctx, v)
	}
	return m, cmd
}

func (m *Model) changePage(page int) {
	m.ctrl.ChangePage(m.ctx, page)
}

// moveCursor steps through the cards, scrolling the viewport to keep the
// selection visible. It does nothing while a fetch holds the scroll lock.
func (m *Model) moveCursor(delta int) {
	if m.lock.Held() || len(m.state.Items) == 0 {
		return
	}
	m.cursor = min(max(0, m.cursor+delta), len(m.state.Items)-1)
	m.refreshCards()

	span := m.cardSpans[m.cursor]
	switch {
	case span[0] < m.viewport.YOffset:
		m.viewport.SetYOffset(span[0])
	case span[1] > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(span[1] - m.viewport.Height)
	}
}

func (m *Model) openSelected() {
	if m.cursor >= len(m.state.Items) {
		return
	}
	m.ctrl.Select(m.state.Items[m.cursor])

	e, ok := m.history.Current()
	if !ok {
		return
	}
	if item, ok := e.State.(series.Item); ok {
		m.detail = &item
	}
}

func (m *Model) closeDetail() {
	m.history.Back()
	m.detail = nil
}

func (m *Model) refreshCards() {
	cards := make([]string, 0, len(m.state.Items))
	m.cardSpans = m.cardSpans[:0]
	line := 0
	for i, item := range m.state.Items {
		card := m.renderCard(i, item)
		h := lipgloss.Height(card)
		m.cardSpans = append(m.cardSpans, [2]int{line, line + h})
		line += h
		cards = append(cards, card)
	}
	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, cards...))
}

func (m *Model) renderCard(i int, item series.Item) string {
	style := m.styles.Card
	if i == m.cursor {
		style = m.styles.SelectedCard
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}

	image := item.ImageURL()
	if image == "" {
		image = "no image"
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.CardTitle.Render(item.Title),
		m.styles.MutedText.Render(fmt.Sprintf("#%d  %s", item.ID, image)),
	))
}

func (m *Model) View() string {
	sections := []string{
		m.styles.Header.Render("SERIES"),
		m.styles.Search.Render(m.search.View()),
		m.body(),
	}
	if status := m.status(); status != "" {
		sections = append(sections, m.styles.Status.Render(status))
	}
	if m.detail == nil && m.state.PageCount > 1 {
		sections = append(sections, m.pager.View())
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) body() string {
	switch {
	case m.detail != nil:
		return m.detailView()
	case m.state.HasError:
		return m.styles.ErrorBox.Render("Something went wrong while loading series.")
	case m.state.NoResults():
		return m.styles.Empty.Render("Oops! No result found.")
	case len(m.state.Items) == 0:
		return ""
	}
	return m.viewport.View()
}

func (m *Model) detailView() string {
	item := m.detail
	path := fmt.Sprintf("/series/%d", item.ID)
	if e, ok := m.history.Current(); ok {
		path = e.Path
	}

	lines := []string{
		m.styles.Path.Render(path),
		"",
		m.styles.CardTitle.Render(item.Title),
		m.styles.MutedText.Render(fmt.Sprintf("ID %d", item.ID)),
	}
	if image := item.ImageURL(); image != "" {
		lines = append(lines, m.styles.MutedText.Render(image))
	}
	if item.Modified != "" {
		lines = append(lines, m.styles.MutedText.Render("modified "+item.Modified))
	}
	return m.styles.Detail.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) status() string {
	if m.state.IsLoading {
		return m.spinner.View() + " Loading series..."
	}
	if m.detail == nil && m.state.Response != nil && !m.state.HasError {
		return m.styles.MutedText.Render(fmt.Sprintf("%d results", m.state.Response.Total))
	}
	return ""
}

// Wait blocks until every fetch the browser started has settled.
func (m *Model) Wait() {
	m.ctrl.Wait()
}
