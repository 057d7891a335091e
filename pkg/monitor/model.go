// Package monitor implements a terminal dashboard that polls an iron's live data and lets the
// user nudge the setpoint.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pinecil-go/pinecil/pkg/protocol"
)

const (
	DefaultInterval = time.Second
	DefaultStep     = 5
	DefaultTimeout  = 5 * time.Second

	historyLength       = 48
	minSetpoint         = 10
	fallbackMaxSetpoint = 450
)

// Iron is the subset of *iron.Iron used by the dashboard.
type Iron interface {
	GetDeviceInfo(ctx context.Context) (*protocol.DeviceInfo, error)
	GetLiveData(ctx context.Context) (*protocol.LiveData, error)
	SetTemperature(ctx context.Context, temp int) error
	SaveSettings(ctx context.Context) error
	TemperatureUnit(ctx context.Context) (protocol.TempUnit, error)
}

type Options struct {
	// Interval between live data polls.
	Interval time.Duration
	// Step is the setpoint change per key press, in the iron's temperature unit.
	Step int
	// Timeout bounds each BLE operation.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Model is the bubbletea model of the dashboard. At most one BLE operation is outstanding at a
// time; setpoint changes made while a read is in flight are coalesced and sent afterwards.
type Model struct {
	iron Iron
	opts Options

	info    *protocol.DeviceInfo
	unit    protocol.TempUnit
	live    *protocol.LiveData
	history []int

	target     int // setpoint waiting to be written, 0 if none
	saveQueued bool
	inflight   bool
	paused     bool

	err    error
	status string

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
}

type infoMsg struct {
	info *protocol.DeviceInfo
	unit protocol.TempUnit
	err  error
}

type liveMsg struct {
	live *protocol.LiveData
	err  error
}

type setpointMsg struct {
	temp int
	err  error
}

type saveMsg struct {
	err error
}

type tickMsg time.Time

func NewModel(iron Iron, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		iron:     iron,
		opts:     opts.withDefaults(),
		inflight: true,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		styles:   DefaultStyles(),
	}
	m.spinner.Style = m.styles.Hot
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchInfo(), m.tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.paused || m.inflight {
			return m, m.tick()
		}
		m.inflight = true
		if m.info == nil {
			return m, tea.Batch(m.fetchInfo(), m.tick())
		}
		return m, tea.Batch(m.fetchLive(), m.tick())

	case infoMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.info = msg.info
		m.unit = msg.unit
		m.err = nil
		return m, m.next()

	case liveMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = msg.err
			return m, m.next()
		}
		m.err = nil
		m.live = msg.live
		m.history = append(m.history, msg.live.LiveTemp)
		if len(m.history) > historyLength {
			m.history = m.history[len(m.history)-historyLength:]
		}
		return m, m.next()

	case setpointMsg:
		m.inflight = false
		if m.target == msg.temp {
			m.target = 0
		}
		if msg.err != nil {
			m.err = msg.err
			if protocol.MayHaveSucceeded(msg.err) {
				m.status = fmt.Sprintf("Setpoint %d%s may not have been applied", msg.temp, m.unit.Symbol())
			}
			return m, m.next()
		}
		m.err = nil
		m.status = fmt.Sprintf("Setpoint %d%s", msg.temp, m.unit.Symbol())
		if m.live != nil {
			m.live.SetpointTemp = msg.temp
		}
		return m, m.next()

	case saveMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "Settings saved"
		}
		return m, m.next()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Hotter):
		m.adjust(m.opts.Step)
		return m, m.next()
	case key.Matches(msg, m.keys.Colder):
		m.adjust(-m.opts.Step)
		return m, m.next()
	case key.Matches(msg, m.keys.Save):
		m.saveQueued = true
		return m, m.next()
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.inflight {
			return m, nil
		}
		m.inflight = true
		if m.info == nil {
			return m, m.fetchInfo()
		}
		return m, m.fetchLive()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// adjust moves the pending setpoint by delta, starting from the iron's current setpoint. All
// values are in the iron's unit.
func (m *Model) adjust(delta int) {
	if m.live == nil {
		return
	}
	base := m.target
	if base == 0 {
		base = m.live.SetpointTemp
	}
	limit := m.live.MaxTipTempAbility
	if limit <= 0 {
		limit = int(protocol.ConvertTemperature(fallbackMaxSetpoint, protocol.Celsius, m.unit))
	}
	m.target = min(max(base+delta, minSetpoint), limit)
}

// next starts the queued write, if any, unless an operation is already outstanding.
func (m *Model) next() tea.Cmd {
	if m.inflight {
		return nil
	}
	switch {
	case m.target != 0:
		m.inflight = true
		return m.writeSetpoint(m.target)
	case m.saveQueued:
		m.inflight = true
		m.saveQueued = false
		return m.save()
	case m.live == nil && m.info != nil && !m.paused:
		m.inflight = true
		return m.fetchLive()
	}
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchInfo() tea.Cmd {
	iron, timeout := m.iron, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		info, err := iron.GetDeviceInfo(ctx)
		if err != nil {
			return infoMsg{err: err}
		}
		unit, err := iron.TemperatureUnit(ctx)
		if err != nil {
			return infoMsg{err: err}
		}
		return infoMsg{info: info, unit: unit}
	}
}

func (m Model) fetchLive() tea.Cmd {
	iron, timeout := m.iron, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		live, err := iron.GetLiveData(ctx)
		return liveMsg{live: live, err: err}
	}
}

func (m Model) writeSetpoint(temp int) tea.Cmd {
	iron, timeout := m.iron, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return setpointMsg{temp: temp, err: iron.SetTemperature(ctx, temp)}
	}
}

func (m Model) save() tea.Cmd {
	iron, timeout := m.iron, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return saveMsg{err: iron.SaveSettings(ctx)}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTitleBar())
	b.WriteString("\n\n")

	if m.live == nil {
		if m.err == nil {
			b.WriteString(m.spinner.View() + " " + m.styles.Warning.Render("Reading live data..."))
		}
	} else {
		b.WriteString(m.renderLive())
		b.WriteString(m.styles.Graph.Render(sparkline(m.history)))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + m.styles.Error.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + m.styles.Muted.Render(m.status) + "\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return m.styles.App.Render(b.String())
}

func (m Model) renderTitleBar() string {
	parts := []string{m.styles.Title.Render("Pinecil")}
	if m.info != nil {
		name := m.info.Name
		if name == "" {
			name = m.info.Address
		}
		parts = append(parts, m.styles.Muted.Render(name), m.styles.Muted.Render(m.info.Build))
	}
	switch {
	case m.err != nil:
		parts = append(parts, m.styles.Offline.Render("○ Offline"))
	case m.info == nil:
		parts = append(parts, m.spinner.View()+" "+m.styles.Warning.Render("Connecting..."))
	case m.paused:
		parts = append(parts, m.styles.Warning.Render("❚❚ Paused"))
	default:
		parts = append(parts, m.styles.Online.Render("●"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderLive() string {
	live, sym := m.live, m.unit.Symbol()
	setpoint := fmt.Sprintf("%d%s", live.SetpointTemp, sym)
	if m.target != 0 {
		setpoint += m.styles.Warning.Render(fmt.Sprintf(" → %d%s", m.target, sym))
	}
	idle := live.Uptime - live.MovementTime

	var b strings.Builder
	b.WriteString(m.styles.Label.Render("Tip:") + " " + m.styles.Hot.Render(fmt.Sprintf("%d%s", live.LiveTemp, sym)) + "\n")
	b.WriteString(m.renderField("Setpoint", setpoint))
	b.WriteString(m.renderField("Mode", live.OperatingMode.String()))
	b.WriteString(m.renderField("Handle", fmt.Sprintf("%.1f°C", live.HandleTemp)))
	b.WriteString(m.renderField("Input", fmt.Sprintf("%.1f V (%s)", live.DCVoltage, live.PowerSource)))
	b.WriteString(m.renderField("Power", fmt.Sprintf("%.1f W, PWM %d%%", live.EstimatedPower, live.PWMLevel)))
	b.WriteString(m.renderField("Tip resistance", fmt.Sprintf("%.1f Ω", live.TipResistance)))
	b.WriteString(m.renderField("Uptime", formatSeconds(live.Uptime)))
	b.WriteString(m.renderField("Idle", formatSeconds(idle)))
	return b.String()
}

func (m Model) renderField(label, value string) string {
	return m.styles.Label.Render(label+":") + " " + m.styles.Value.Render(value) + "\n"
}

func formatSeconds(s float64) string {
	if s < 0 {
		s = 0
	}
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkline renders values scaled between their minimum and maximum.
func sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		level := 0
		if hi > lo {
			level = (v - lo) * (len(sparkLevels) - 1) / (hi - lo)
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}
