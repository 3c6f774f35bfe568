package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/recordlist/internal/loader"
	"github.com/rshade/recordlist/internal/logging"
	"github.com/rshade/recordlist/internal/record"
	listview "github.com/rshade/recordlist/internal/tui/list"
)

// chromeHeight is the number of terminal rows around the record rows:
// title, column header with its underline, status line and help line.
const chromeHeight = 5

// Creator creates records. store.Store satisfies it.
type Creator interface {
	CreateRecord(ctx context.Context, payload record.NewRecord) (*record.Record, error)
}

// pageFetchedMsg carries a fetch result back onto the event loop.
type pageFetchedMsg struct {
	result loader.Result
}

// recordCreatedMsg reports the outcome of a create call.
type recordCreatedMsg struct {
	record *record.Record
	err    error
}

// RecordsModel is the interactive records browser. Every loader method is
// called from Update; fetches and creates run inside commands and report
// back with messages.
type RecordsModel struct {
	ctx     context.Context
	loader  *loader.Loader
	creator Creator
	logger  zerolog.Logger
	printer *message.Printer

	state   ViewState
	list    *listview.VirtualListModel[record.Record]
	loading *LoadingState
	form    *FormModel

	width  int
	height int
	notice string
}

// NewRecordsModel creates the browser. Loading starts with Init.
func NewRecordsModel(ctx context.Context, l *loader.Loader, creator Creator, logger zerolog.Logger) *RecordsModel {
	m := &RecordsModel{
		ctx:     ctx,
		loader:  l,
		creator: creator,
		logger:  logging.ComponentLogger(logger, "tui"),
		printer: message.NewPrinter(language.English),
		state:   ViewStateLoading,
		loading: NewLoadingState(),
		form:    NewFormModel(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.list = listview.NewVirtualListModel[record.Record](nil, m.listHeight(), m.width, m.renderRow)
	m.form.SetWidth(m.width)
	return m
}

// Init starts the spinner and requests the first page.
func (m *RecordsModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.fetch(m.loader.Start()))
}

// Update handles messages (Bubble Tea interface).
func (m *RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.listHeight(), m.width)
		m.form.SetWidth(m.width)
		return m, m.checkTail()
	case spinner.TickMsg:
		return m, m.loading.Update(msg)
	case pageFetchedMsg:
		return m, m.handlePage(msg.result)
	case recordCreatedMsg:
		return m, m.handleCreated(msg)
	case FormSubmitMsg:
		m.loader.ClearChange()
		m.form.SetSubmitting(true)
		return m, m.create(msg.Payload)
	case FormCancelMsg:
		m.state = ViewStateList
		return m, m.checkTail()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == ViewStateForm {
		return m, m.form.Update(msg)
	}
	return m, nil
}

func (m *RecordsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	switch m.state {
	case ViewStateForm:
		return m, m.form.Update(msg)
	case ViewStateDetail:
		switch msg.String() {
		case keyQuit:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEsc, keyEnter:
			m.state = ViewStateList
		}
		return m, nil
	case ViewStateQuitting:
		return m, nil
	case ViewStateLoading, ViewStateList:
	}

	key := msg.String()
	switch key {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyNew:
		m.state = ViewStateForm
		m.notice = ""
		return m, m.form.Reset()
	case keyRetry:
		if m.loader.Snapshot().Err == nil {
			return m, nil
		}
		m.notice = ""
		return m, m.fetch(m.loader.Retry())
	case keyEnter:
		if m.list.GetSelectedItem() != nil {
			m.state = ViewStateDetail
		}
		return m, nil
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(record.Columns) {
		req, err := m.loader.ToggleSort(record.Columns[n-1].Key)
		if err != nil {
			m.logger.Error().Str("operation", "toggle_sort").Err(err).Msg("sort toggle rejected")
			return m, nil
		}
		return m, m.fetch(req)
	}

	if m.list.HandleKey(msg) {
		return m, m.checkTail()
	}
	return m, nil
}

func (m *RecordsModel) handlePage(res loader.Result) tea.Cmd {
	outcome, next := m.loader.Apply(res)
	m.logger.Debug().
		Str("operation", "apply").
		Str("outcome", outcome.String()).
		Int("page", res.Request.Page).
		Msg("page result handled")

	if outcome == loader.OutcomeStale {
		return nil
	}

	m.syncList()
	if outcome == loader.OutcomeApplied && res.Request.Page == 1 {
		m.list.SetSelected(0)
	}
	if m.state == ViewStateLoading {
		m.state = ViewStateList
	}
	if next != nil {
		return m.fetch(next)
	}
	return m.checkTail()
}

func (m *RecordsModel) handleCreated(msg recordCreatedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn().Str("operation", "create").Err(msg.err).Msg("record creation failed")
		m.form.SetError(msg.err)
		return nil
	}

	m.form.SetSubmitting(false)
	m.state = ViewStateList
	m.notice = "Created " + msg.record.FullName()
	m.logger.Info().Str("operation", "create").Str("record_id", msg.record.ID).Msg("record created")
	return m.fetch(m.loader.OnRecordCreated())
}

// syncList shows the loaded records. While the first page of a new load
// sequence is outstanding the previous rows stay on screen.
func (m *RecordsModel) syncList() {
	snap := m.loader.Snapshot()
	if snap.Loading {
		return
	}
	m.list.SetItems(snap.Records)
}

// checkTail reports the tail row to the loader when it is on screen.
func (m *RecordsModel) checkTail() tea.Cmd {
	if m.state != ViewStateList || !m.list.TailVisible() {
		return nil
	}
	items := m.list.Items()
	return m.fetch(m.loader.OnIntersect(items[len(items)-1].ID))
}

func (m *RecordsModel) fetch(req *loader.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	r := *req
	l, ctx := m.loader, m.ctx
	return func() tea.Msg {
		return pageFetchedMsg{result: l.Fetch(ctx, r)}
	}
}

func (m *RecordsModel) create(payload record.NewRecord) tea.Cmd {
	creator, ctx := m.creator, m.ctx
	return func() tea.Msg {
		rec, err := creator.CreateRecord(ctx, payload)
		return recordCreatedMsg{record: rec, err: err}
	}
}

func (m *RecordsModel) listHeight() int {
	return max(m.height-chromeHeight, 1)
}

// State returns the current view state.
func (m *RecordsModel) State() ViewState {
	return m.state
}

// Notice returns the last informational message.
func (m *RecordsModel) Notice() string {
	return m.notice
}
