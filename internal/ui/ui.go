// Package ui is the terminal front end. All task logic lives in the
// store; this package turns key presses into store calls and renders
// the plan the store hands back.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/reeshuffled/dodue/internal/config"
	"github.com/reeshuffled/dodue/internal/dates"
	"github.com/reeshuffled/dodue/internal/storage"
	"github.com/reeshuffled/dodue/internal/store"
	"github.com/reeshuffled/dodue/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

// add flow fields, entered in order like a form.
const (
	addName = iota
	addDoDate
	addDueDate
	addFieldCount
)

type addState struct {
	name    string
	doDate  string
	dueDate string
	index   int
	prevDo  string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	messageStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type Model struct {
	store  *store.Store
	cfg    config.Config
	logger *log.Logger

	today   dates.Date
	plan    store.Plan
	visible []*task.Task
	cursor  int

	mode      mode
	input     textinput.Model
	add       *addState
	editTask  *task.Task
	editField task.Field

	confirmDel bool
	pendingDel *task.Task
	showHelp   bool
	status     string
}

// tickMsg refreshes "today"; the app may sit open across midnight.
type tickMsg time.Time

func Run(st *store.Store, cfg config.Config, logger *log.Logger) error {
	ti := textinput.New()
	ti.Placeholder = "Task name"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:  st,
		cfg:    cfg,
		logger: logger,
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add a task, '%s' for help.", cfg.Keys.Add, cfg.Keys.Help),
	}
	m.replan()
	logger.Debug("ui ready", "tasks", len(m.visible))

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.replan()
		return m, tick()
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg.String(), msg)
		case modeEdit:
			return m.updateEditMode(msg.String(), msg)
		default:
			return m.updateListMode(msg.String())
		}
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// replan re-sorts and re-classifies against a fresh "today" and
// rebuilds the flattened navigation order from the visible sections.
func (m *Model) replan() {
	m.today = m.store.Today()
	m.plan = m.store.MakePlan(m.today)
	prefs := m.store.Prefs()

	m.visible = nil
	if prefs.ShowOverdueTasks {
		m.visible = append(m.visible, m.plan.Overdue...)
	}
	if prefs.ShowCurrentTasks {
		m.visible = append(m.visible, m.plan.DoNow...)
	}
	if prefs.ShowLaterTasks {
		m.visible = append(m.visible, m.plan.DoLater...)
	}
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m Model) selected() *task.Task {
	if len(m.visible) == 0 {
		return nil
	}
	return m.visible[m.cursor]
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case "down", m.cfg.Keys.Down:
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case "up", m.cfg.Keys.Up:
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case m.cfg.Keys.Add:
		today := m.store.Today()
		m.add = &addState{
			doDate:  today.Input(),
			dueDate: today.AddDays(1).Input(),
			prevDo:  today.Input(),
		}
		m.mode = modeAdd
		m.input.Placeholder = "Task name"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Add a task: Enter advances, Esc cancels"
	case m.cfg.Keys.Delete:
		t := m.selected()
		if t == nil {
			m.status = "No task selected"
			return m, nil
		}
		if m.store.Prefs().ConfirmKeyboardDeletes {
			m.confirmDel = true
			m.pendingDel = t
			m.status = fmt.Sprintf("Delete %q? y/n", t.Name)
			return m, nil
		}
		return m.deleteTask(t)
	case m.cfg.Keys.Finish:
		t := m.selected()
		if t == nil {
			m.status = "No task selected"
			return m, nil
		}
		// Finishing removes the task; there is no done flag.
		if err := m.store.Delete(t); err != nil {
			m.status = storageWarning(err, "finish saved in memory only")
		} else {
			m.status = fmt.Sprintf("Finished %q, nice work!", t.Name)
		}
		m.replan()
	case m.cfg.Keys.Today:
		t := m.selected()
		if t == nil {
			m.status = "No task selected"
			return m, nil
		}
		if err := m.store.SetDoDateToToday(t); err != nil {
			m.status = storageWarning(err, "reschedule saved in memory only")
		} else {
			m.status = fmt.Sprintf("%q is now due for today", t.Name)
		}
		m.replan()
	case m.cfg.Keys.EditName:
		return m.startEdit(m.selected(), task.FieldName)
	case m.cfg.Keys.EditDoDate:
		return m.startEdit(m.selected(), task.FieldDoDate)
	case m.cfg.Keys.EditDueDate:
		return m.startEdit(m.selected(), task.FieldDueDate)
	case m.cfg.Keys.Help:
		m.showHelp = !m.showHelp
	case m.cfg.Keys.ToggleOverdue:
		return m.togglePref(store.PrefShowOverdue, "overdue section")
	case m.cfg.Keys.ToggleCurrent:
		return m.togglePref(store.PrefShowCurrent, "do-now section")
	case m.cfg.Keys.ToggleLater:
		return m.togglePref(store.PrefShowLater, "do-later section")
	case m.cfg.Keys.ToggleConfirm:
		return m.togglePref(store.PrefConfirmDeletes, "delete confirmation")
	}
	return m, nil
}

func (m Model) togglePref(p store.Pref, label string) (tea.Model, tea.Cmd) {
	if _, err := m.store.TogglePref(p); err != nil {
		m.status = storageWarning(err, "toggle saved in memory only")
	} else {
		m.status = "Toggled " + label
	}
	m.replan()
	return m, nil
}

func (m Model) deleteTask(t *task.Task) (tea.Model, tea.Cmd) {
	if err := m.store.Delete(t); err != nil {
		if errors.Is(err, store.ErrUnknownTask) {
			m.status = "delete failed: task already gone"
		} else {
			m.status = storageWarning(err, "delete saved in memory only")
		}
	} else {
		m.status = fmt.Sprintf("Deleted %q", t.Name)
	}
	m.replan()
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		// Declining is a no-op.
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		t := m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		if t == nil {
			m.status = "Nothing to delete"
			return m, nil
		}
		return m.deleteTask(t)
	default:
		return m, nil
	}
}

func (m Model) startEdit(t *task.Task, field task.Field) (tea.Model, tea.Cmd) {
	if t == nil {
		m.status = "No task selected"
		return m, nil
	}
	initial, err := m.store.StartEdit(t, field)
	if err != nil {
		// The previous edit was force-committed and refused; its
		// field kept the old value.
		m.status = fmt.Sprintf("previous edit not saved: %v", err)
	} else {
		m.status = fmt.Sprintf("Editing %s: Enter saves, Esc keeps the old value, Tab jumps to the next field", field)
	}
	m.editTask = t
	m.editField = field
	if field == task.FieldName {
		m.input.Placeholder = "Task name"
	} else {
		m.input.Placeholder = "YYYY-MM-DD"
	}
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
	m.mode = modeEdit
	m.replan()
	return m, nil
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.store.CancelEdit()
		m.closeInput()
		m.status = "Edit cancelled"
		m.replan()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.store.SetEditValue(m.input.Value())
		if err := m.store.CommitEdit(); err != nil {
			m.status = editError(err)
		} else {
			m.status = "Saved"
		}
		m.closeInput()
		m.replan()
		return m, nil
	case "tab":
		// Switching fields commits the open edit with whatever has
		// been typed so far; it never discards input.
		next := task.Field((int(m.editField) + 1) % 3)
		return m.startEdit(m.editTask, next)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.store.SetEditValue(m.input.Value())
		return m, cmd
	}
}

func (m *Model) closeInput() {
	m.mode = modeList
	m.input.Blur()
	m.input.SetValue("")
	m.editTask = nil
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.add = nil
		m.closeInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		return m.advanceAdd()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) advanceAdd() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	switch m.add.index {
	case addName:
		if strings.TrimSpace(value) == "" {
			m.status = "Name cannot be empty"
			return m, nil
		}
		m.add.name = value
		m.add.index = addDoDate
		m.input.Placeholder = "YYYY-MM-DD"
		m.input.SetValue(m.add.doDate)
		m.input.CursorEnd()
		m.status = "Do date: the day to start the work"
		return m, nil
	case addDoDate:
		newDo, err := dates.ParseInput(value)
		if err != nil {
			m.status = fmt.Sprintf("do date invalid: %v", err)
			return m, nil
		}
		// Nudging the do date forward a single day drags the due
		// date along with it.
		if prev, perr := dates.ParseInput(m.add.prevDo); perr == nil && dates.DayDelta(prev, newDo) == 1 {
			if due, derr := dates.ParseInput(m.add.dueDate); derr == nil {
				m.add.dueDate = due.AddDays(1).Input()
			}
		}
		m.add.doDate = value
		m.add.prevDo = value
		m.add.index = addDueDate
		m.input.SetValue(m.add.dueDate)
		m.input.CursorEnd()
		m.status = "Due date: the day the work must be done"
		return m, nil
	default:
		m.add.dueDate = value
		created, err := m.store.Create(m.add.name, m.add.doDate, m.add.dueDate)
		switch {
		case errors.Is(err, store.ErrEmptyName):
			m.add.index = addName
			m.input.Placeholder = "Task name"
			m.input.SetValue(m.add.name)
			m.status = "Name cannot be empty"
			return m, nil
		case errors.Is(err, store.ErrDueBeforeDo):
			// Revert to the last acceptable value, like a clamped
			// date input.
			m.input.SetValue(defaultDueFor(m.add.doDate))
			m.input.CursorEnd()
			m.status = "Due date cannot be before the do date"
			return m, nil
		case err != nil && isParseError(err):
			m.status = fmt.Sprintf("due date invalid: %v", err)
			return m, nil
		case err != nil:
			// Storage failed; the task is in the list but only in
			// memory until a later write succeeds.
			m.status = storageWarning(err, "task kept in memory only")
		default:
			m.status = fmt.Sprintf("Added %q", created.Name)
		}
		m.add = nil
		m.closeInput()
		m.replan()
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("do.due"))
	b.WriteString("\n\n")

	if m.mode == modeAdd {
		labels := [addFieldCount]string{"name", "do date", "due date"}
		b.WriteString(fmt.Sprintf("Add task: %s (%d/%d)\n", labels[m.add.index], m.add.index+1, addFieldCount))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render(m.status))
		return b.String()
	}

	prefs := m.store.Prefs()
	idx := 0

	// The overdue section only appears when something slipped.
	if prefs.ShowOverdueTasks && len(m.plan.Overdue) > 0 {
		b.WriteString(overdueStyle.Render("overdue"))
		b.WriteString("\n")
		idx = m.renderSection(&b, m.plan.Overdue, idx)
		b.WriteString("\n")
	}

	if prefs.ShowCurrentTasks {
		b.WriteString(sectionStyle.Render("do now"))
		b.WriteString("\n")
		if len(m.plan.DoNow) == 0 {
			b.WriteString(messageStyle.Render("you have no more tasks for today :)"))
			b.WriteString("\n")
		} else {
			idx = m.renderSection(&b, m.plan.DoNow, idx)
		}
		b.WriteString("\n")
	}

	if prefs.ShowLaterTasks {
		b.WriteString(sectionStyle.Render("do later"))
		b.WriteString("\n")
		if len(m.plan.DoLater) == 0 {
			b.WriteString(messageStyle.Render("you have no more tasks for the foreseeable future :)"))
			b.WriteString("\n")
		} else {
			idx = m.renderSection(&b, m.plan.DoLater, idx)
		}
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSection(b *strings.Builder, tasks []*task.Task, idx int) int {
	for _, t := range tasks {
		b.WriteString(m.renderTask(t, idx))
		b.WriteString("\n")
		idx++
	}
	return idx
}

func (m Model) renderTask(t *task.Task, idx int) string {
	marker := "  "
	selected := idx == m.cursor && len(m.visible) > 0 && m.visible[m.cursor] == t
	if selected && m.mode == modeList {
		marker = "> "
	}

	name := t.Name
	do := dates.Label(t.DoDate, m.today)
	due := dates.Label(t.DueDate, m.today)

	if m.mode == modeEdit && m.editTask == t {
		field := m.input.View()
		switch m.editField {
		case task.FieldName:
			name = field
		case task.FieldDoDate:
			do = field
		case task.FieldDueDate:
			due = field
		}
		marker = "> "
	}

	line := fmt.Sprintf("%s%s  •  do: %s  •  due: %s", marker, name, do, due)
	if selected && m.mode == modeList {
		return selectedStyle.Render(line)
	}
	return line
}

func renderHelp(k config.Keymap) string {
	lines := []string{
		fmt.Sprintf("%s/%s or arrows move • %s add • %s delete • %s finish", k.Up, k.Down, k.Add, k.Delete, k.Finish),
		fmt.Sprintf("%s/%s/%s edit name/do/due • %s do it today", k.EditName, k.EditDoDate, k.EditDueDate, k.Today),
		fmt.Sprintf("%s/%s/%s show sections • %s delete confirmation • %s help • %s quit",
			k.ToggleOverdue, k.ToggleCurrent, k.ToggleLater, k.ToggleConfirm, k.Help, k.Quit),
	}
	return strings.Join(lines, "\n")
}

func editError(err error) string {
	switch {
	case errors.Is(err, store.ErrEmptyName):
		return "name cannot be empty; kept the old one"
	case errors.Is(err, store.ErrDueBeforeDo):
		return "due date cannot be before the do date; kept the old one"
	case isParseError(err):
		return fmt.Sprintf("not a date; kept the old value (%v)", err)
	default:
		return storageWarning(err, "edit saved in memory only")
	}
}

func storageWarning(err error, note string) string {
	var serr *storage.Error
	if errors.As(err, &serr) {
		return fmt.Sprintf("storage failed, %s: %v", note, err)
	}
	return fmt.Sprintf("save failed: %v", err)
}

func isParseError(err error) bool {
	var perr *dates.ParseError
	return errors.As(err, &perr)
}

func defaultDueFor(doInput string) string {
	if do, err := dates.ParseInput(doInput); err == nil {
		return do.AddDays(1).Input()
	}
	return doInput
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
