// Package viz renders a live terminal view of a drop: the board as a
// braille canvas next to a stats panel, advancing the engine from the
// bubbletea tick loop.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pegfall/internal/board"
	"github.com/san-kum/pegfall/internal/session"
)

const (
	canvasWidth  = 60
	canvasHeight = 30
	stepsPerTick = 2
	frameRate    = 30
	maxEvents    = 8
)

type TickMsg time.Time

type eventLog struct {
	lines []string
}

func (l *eventLog) add(s string) {
	l.lines = append(l.lines, s)
	if len(l.lines) > maxEvents {
		l.lines = l.lines[1:]
	}
}

// Model is the bubbletea model wrapping one engine.
type Model struct {
	eng     *session.Engine
	log     *eventLog
	canvas  *Canvas
	dropX   float64
	running bool
}

// NewModel builds an engine for the board with callbacks feeding the
// event panel, and starts the first drop.
func NewModel(b *board.Board, classes session.ClassTable, classID string, dropX float64) (Model, error) {
	log := &eventLog{}

	eng, err := session.New(b, classes, session.Callbacks{
		OnBallDropped: func() {
			log.add("ball dropped")
		},
		OnPegHit: func(peg board.PegID, hitCount int) {
			log.add(fmt.Sprintf("peg %s hit (#%d)", peg, hitCount))
		},
		OnBucketLand: func(bucket board.Bucket, totalHits int) {
			log.add(fmt.Sprintf("landed in %s  x%.2f  (%d peg hits)", bucket.Label, bucket.Multiplier, totalHits))
		},
	})
	if err != nil {
		return Model{}, err
	}

	eng.SetClass(classID)
	eng.Drop(dropX)

	return Model{
		eng:     eng,
		log:     log,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		dropX:   dropX,
		running: true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.eng.Destroy()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.eng.Reset()
			m.eng.Drop(m.dropX)
			m.running = true
		}
	case TickMsg:
		if m.running && m.eng.State() == session.Dropping {
			for i := 0; i < stepsPerTick; i++ {
				m.eng.Step(session.TickMillis)
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	m.draw()

	b := m.eng.Board()
	var field strings.Builder
	field.WriteString(m.canvas.String())
	field.WriteString(m.bucketRow(b))

	stats := m.statsPanel()

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(field.String()),
		statsStyle.Render(stats),
	)

	help := helpStyle.Render("space pause · r redrop · q quit")
	return view + "\n" + help + "\n"
}

func (m *Model) draw() {
	m.canvas.Clear()
	b := m.eng.Board()

	subW := float64(canvasWidth*2 - 1)
	subH := float64(canvasHeight*4 - 1)
	sx := func(x float64) int { return int(x / b.Config.Width * subW) }
	sy := func(y float64) int { return int(y / b.Config.Height * subH) }

	for _, s := range b.Walls {
		m.canvas.Line(sx(s.A.X), sy(s.A.Y), sx(s.B.X), sy(s.B.Y))
	}
	for _, s := range b.Deflectors {
		m.canvas.Line(sx(s.A.X), sy(s.A.Y), sx(s.B.X), sy(s.B.Y))
	}
	for _, s := range b.Dividers {
		m.canvas.Line(sx(s.A.X), sy(s.A.Y), sx(s.B.X), sy(s.B.Y))
	}
	for _, p := range b.Pegs {
		m.canvas.Set(sx(p.Pos.X), sy(p.Pos.Y))
	}

	if m.eng.State() == session.Dropping {
		pos := m.eng.Position()
		px, py := sx(pos.X), sy(pos.Y)
		m.canvas.Set(px, py)
		m.canvas.Set(px+1, py)
		m.canvas.Set(px, py+1)
		m.canvas.Set(px+1, py+1)
	}
}

func (m Model) bucketRow(b *board.Board) string {
	per := canvasWidth / len(b.Buckets)
	var sb strings.Builder
	for _, bucket := range b.Buckets {
		label := fmt.Sprintf("x%.1f", bucket.Multiplier)
		pad := per - len(label)
		sb.WriteString(strings.Repeat(" ", pad/2+pad%2))
		sb.WriteString(label)
		sb.WriteString(strings.Repeat(" ", pad/2))
	}
	return sb.String()
}

func (m Model) statsPanel() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("pegfall"))
	sb.WriteByte('\n')

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(valueStyle.Render(value))
		sb.WriteByte('\n')
	}

	row("state", m.eng.State().String())
	row("class", m.eng.Class().ID)
	row("tick", fmt.Sprintf("%d", m.eng.Tick()))
	row("peg hits", fmt.Sprintf("%d", m.eng.PegHits()))

	if m.eng.State() == session.Dropping {
		pos, vel := m.eng.Position(), m.eng.Velocity()
		row("pos", fmt.Sprintf("%.0f, %.0f", pos.X, pos.Y))
		row("speed", fmt.Sprintf("%.1f", vel.Mag()))
	}

	counts := m.eng.Stability().Counts()
	row("corrections", fmt.Sprintf("%d", counts.Total()))

	if bucket := m.eng.Bucket(); bucket != nil {
		sb.WriteByte('\n')
		sb.WriteString(landedStyle.Render(fmt.Sprintf("%s  x%.2f", bucket.Label, bucket.Multiplier)))
		sb.WriteByte('\n')
	}

	if len(m.log.lines) > 0 {
		sb.WriteByte('\n')
		for _, line := range m.log.lines {
			sb.WriteString(eventStyle.Render(line))
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
