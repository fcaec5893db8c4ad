package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fretboard/pkg/cache"
	"github.com/matzehuels/fretboard/pkg/chord"
	"github.com/matzehuels/fretboard/pkg/config"
	"github.com/matzehuels/fretboard/pkg/errors"
	"github.com/matzehuels/fretboard/pkg/fretboard"
	"github.com/matzehuels/fretboard/pkg/note"
	"github.com/matzehuels/fretboard/pkg/pipeline"
	"github.com/matzehuels/fretboard/pkg/render"
	"github.com/matzehuels/fretboard/pkg/scale"
	"github.com/matzehuels/fretboard/pkg/tuning"
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var tuningName string

	cmd := &cobra.Command{
		Use:   "explore [source]",
		Short: "Explore scales and chords interactively",
		Long: `Explore scales and chords on an interactive fretboard.

The optional source is anything the explorer's "/" prompt accepts:
  A minor pentatonic    a scale
  Am7                   a chord symbol
  G dominant            a root and chord quality
  chord C major         force the chord reading of a name
  D                     a root alone, labeling intervals

The config file is watched while the explorer runs; saving it applies the
new display and fingering settings immediately.`,
		Example: `  fretboard explore
  fretboard explore E blues --tuning "drop d"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if cmd.Flags().Changed("tuning") {
				if err := checkTuning(tuningName); err != nil {
					return err
				}
				cfg.Fretboard.Tuning = tuningName
			}

			m, err := newExploreModel(cmd.Context(), cfg, lipgloss.NewRenderer(os.Stdout))
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if err := m.setSource(strings.Join(args, " ")); err != nil {
					return err
				}
			}

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if path, err := c.configPathOrDefault(); err == nil {
				if _, statErr := os.Stat(path); statErr == nil {
					w, err := config.Watch(cmd.Context(), path, func(cfg *config.Config, err error) {
						p.Send(configMsg{cfg: cfg, err: err})
					})
					if err != nil {
						c.Logger.Warn("config changes will not be applied", "err", err)
					} else {
						defer w.Close()
					}
				}
			}

			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&tuningName, "tuning", "t", "", "starting tuning")
	_ = cmd.RegisterFlagCompletionFunc("tuning", completeFrom(tuningCandidates))

	return cmd
}

// =============================================================================
// Key Bindings
// =============================================================================

type exploreKeys struct {
	Left, Right, Up, Down key.Binding
	Press, Select         key.Binding
	RootUp, RootDown      key.Binding
	NextVoicing           key.Binding
	PrevVoicing           key.Binding
	Tuning                key.Binding
	ShiftUp, ShiftDown    key.Binding
	Intervals, Naming     key.Binding
	Fingers, AllNotes     key.Binding
	Source, Clear         key.Binding
	Help, Quit            key.Binding
}

func defaultExploreKeys() exploreKeys {
	return exploreKeys{
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "fret down")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "fret up")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "higher string")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "lower string")),
		Press:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "press fret")),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select note")),
		RootUp:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r/R", "root ±1")),
		RootDown:    key.NewBinding(key.WithKeys("R")),
		NextVoicing: key.NewBinding(key.WithKeys("v"), key.WithHelp("v/V", "voicing")),
		PrevVoicing: key.NewBinding(key.WithKeys("V")),
		Tuning:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tuning")),
		ShiftUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "move window")),
		ShiftDown:   key.NewBinding(key.WithKeys("[")),
		Intervals:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "intervals")),
		Naming:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "spelling")),
		Fingers:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fingers")),
		AllNotes:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all notes")),
		Source:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "scale or chord")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear marks")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k exploreKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Source, k.RootUp, k.NextVoicing, k.Tuning, k.Intervals, k.Help, k.Quit}
}

func (k exploreKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.ShiftUp},
		{k.Press, k.Select, k.Clear, k.Source},
		{k.RootUp, k.NextVoicing, k.Tuning},
		{k.Intervals, k.Naming, k.Fingers, k.AllNotes},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// exploreRoots are the roots visited by r/R, in common key spellings.
var exploreRoots = []string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// exploreSource is the parsed "/" prompt.
type exploreSource struct {
	kind fretboard.SourceKind
	root *note.Note
	// name is the scale type or chord quality; empty for a bare root.
	name string
}

type boardMsg struct {
	seq int
	res *pipeline.Result
	err error
}

type configMsg struct {
	cfg *config.Config
	err error
}

type exploreModel struct {
	ctx      context.Context
	runner   *pipeline.Runner
	base     pipeline.Options
	renderer *lipgloss.Renderer
	keys     exploreKeys
	help     help.Model
	input    textinput.Model

	source    exploreSource
	tuning    tuning.Name
	startFret int
	endFret   int
	display   fretboard.Display
	allNotes  bool
	voicing   int
	cursor    fretboard.Coord
	pressed   []fretboard.Coord
	selected  note.PitchSet

	seq    int
	res    *pipeline.Result
	status string
	err    error
}

func newExploreModel(ctx context.Context, cfg *config.Config, renderer *lipgloss.Renderer) (exploreModel, error) {
	t, err := tuning.Parse(cfg.Fretboard.Tuning)
	if err != nil {
		return exploreModel{}, err
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	input := textinput.New()
	input.Placeholder = "A minor pentatonic, Am7, G dominant..."
	input.CharLimit = 48
	input.Width = 40
	input.Prompt = "/ "

	m := exploreModel{
		ctx:       ctx,
		runner:    pipeline.NewRunner(cache.NewMemoryCache(exploreCacheEntries), nil, logger),
		base:      cfg.Options(),
		renderer:  renderer,
		keys:      defaultExploreKeys(),
		help:      help.New(),
		input:     input,
		tuning:    t,
		startFret: cfg.Fretboard.StartFret,
		endFret:   cfg.Fretboard.EndFret,
		display:   cfg.Display(),
		cursor:    fretboard.Coord{String: 1, Fret: cfg.Fretboard.StartFret},
	}
	m.base.Logger = logger
	return m, nil
}

// parseExploreSource reads the "/" prompt. A single token is a root when
// it is a note name and a chord symbol otherwise. Longer input is a root
// followed by a scale type or, failing that, a chord quality; a leading
// "scale" or "chord" forces the reading.
func parseExploreSource(input string) (exploreSource, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return exploreSource{}, nil
	}

	force := ""
	if fields[0] == "scale" || fields[0] == "chord" {
		force, fields = fields[0], fields[1:]
		if len(fields) == 0 {
			return exploreSource{}, errors.New(errors.ErrCodeInvalidInput, "%s needs a root", force)
		}
	}

	if len(fields) == 1 {
		if n, err := note.Parse(fields[0]); err == nil && force == "" {
			return exploreSource{kind: fretboard.SourceNone, root: &n}, nil
		}
		if force == "scale" {
			return exploreSource{}, errors.New(errors.ErrCodeInvalidInput, "scale %q needs a type", fields[0])
		}
		c, err := chord.Parse(fields[0])
		if err != nil {
			return exploreSource{}, err
		}
		return exploreSource{kind: fretboard.SourceChord, root: &c.Root, name: c.Quality.String()}, nil
	}

	root, err := note.Parse(fields[0])
	if err != nil {
		return exploreSource{}, err
	}
	name := strings.Join(fields[1:], " ")
	if force != "chord" {
		if t, err := scale.ParseType(name); err == nil {
			return exploreSource{kind: fretboard.SourceScale, root: &root, name: t.String()}, nil
		}
	}
	if force != "scale" {
		if q, err := chord.ParseQuality(name); err == nil {
			return exploreSource{kind: fretboard.SourceChord, root: &root, name: q.String()}, nil
		}
	}

	var candidates []string
	if force != "chord" {
		candidates = append(candidates, scaleCandidates()...)
	}
	if force != "scale" {
		candidates = append(candidates, qualityCandidates()...)
	}
	if best := suggest(name, candidates); best != "" {
		return exploreSource{}, errors.New(errors.ErrCodeInvalidInput, "unknown scale or chord %q; did you mean %q?", name, best)
	}
	return exploreSource{}, errors.New(errors.ErrCodeInvalidInput, "unknown scale or chord %q", name)
}

// setSource replaces the active source. The voicing restarts at the
// easiest fingering for chords.
func (m *exploreModel) setSource(input string) error {
	src, err := parseExploreSource(input)
	if err != nil {
		return err
	}
	m.source = src
	m.resetVoicing()
	return nil
}

// resetVoicing returns to the easiest fingering after the set of
// fingerings changes.
func (m *exploreModel) resetVoicing() {
	m.voicing = 0
	if m.source.kind == fretboard.SourceChord {
		m.voicing = 1
	}
}

// options assembles the pipeline request for the current state.
func (m exploreModel) options() pipeline.Options {
	opts := m.base
	opts.Tuning = m.tuning.String()
	opts.StartFret = m.startFret
	opts.EndFret = m.endFret

	d := m.display
	opts.Display = &d

	opts.Root, opts.Scale, opts.Chord, opts.Voicing = "", "", "", 0
	if m.source.root != nil {
		opts.Root = m.source.root.Name.String()
	}
	switch m.source.kind {
	case fretboard.SourceScale:
		opts.Scale = m.source.name
	case fretboard.SourceChord:
		opts.Chord = m.source.name
		opts.Voicing = m.voicing
	}

	cursor := m.cursor
	opts.Hover = &cursor
	opts.Pressed = slices.Clone(m.pressed)
	opts.Selected = nil
	for _, c := range m.selected.Chromas() {
		opts.Selected = append(opts.Selected, note.NameFor(c, note.PreferSharp).String())
	}

	text := []render.TextOption{render.WithRenderer(m.renderer)}
	if m.allNotes {
		text = append(text, render.WithAllNotes())
	}
	opts.Render = render.Options{Text: text}
	opts.Formats = []string{pipeline.FormatText}
	opts.MIDI = m.base.MIDI
	return opts
}

// compute returns a command that runs the pipeline for the current state.
// Results of earlier commands become stale.
func (m *exploreModel) compute() tea.Cmd {
	m.seq++
	return m.execute()
}

// execute runs the pipeline tagged with the current sequence number.
func (m exploreModel) execute() tea.Cmd {
	seq, opts, runner, ctx := m.seq, m.options(), m.runner, m.ctx
	return func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		return boardMsg{seq: seq, res: res, err: err}
	}
}

// Init draws the first board. It cannot bump seq: bubbletea keeps the
// model it was given, not a copy Init changed.
func (m exploreModel) Init() tea.Cmd {
	return m.execute()
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.res, m.err = msg.res, nil
		return m, nil

	case configMsg:
		if msg.err != nil {
			m.status = "config not applied: " + errors.UserMessage(msg.err)
			return m, nil
		}
		m.base = msg.cfg.Options()
		m.base.Logger = m.runner.Logger
		m.display = msg.cfg.Display()
		m.status = "config reloaded"
		return m, m.compute()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m exploreModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		if err := m.setSource(m.input.Value()); err != nil {
			m.status = errors.UserMessage(err)
			return m, nil
		}
		m.input.Reset()
		m.status = ""
		return m, m.compute()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m exploreModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	stringCount := tuning.MustGet(m.tuning).StringCount()
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Source):
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Left):
		m.cursor.Fret = max(m.cursor.Fret-1, m.startFret)
	case key.Matches(msg, m.keys.Right):
		m.cursor.Fret = min(m.cursor.Fret+1, m.endFret)
	case key.Matches(msg, m.keys.Up):
		m.cursor.String = max(m.cursor.String-1, 1)
	case key.Matches(msg, m.keys.Down):
		m.cursor.String = min(m.cursor.String+1, stringCount)

	case key.Matches(msg, m.keys.Press):
		if i := slices.Index(m.pressed, m.cursor); i >= 0 {
			m.pressed = slices.Delete(m.pressed, i, i+1)
		} else {
			m.pressed = append(m.pressed, m.cursor)
		}
	case key.Matches(msg, m.keys.Select):
		if f, ok := m.cursorFret(); ok {
			m.selected = m.selected.Toggle(f.Note.Chroma())
		}
	case key.Matches(msg, m.keys.Clear):
		m.pressed, m.selected = nil, 0

	case key.Matches(msg, m.keys.RootUp), key.Matches(msg, m.keys.RootDown):
		if m.source.root == nil {
			m.status = "no root; press / to choose one"
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.RootDown) {
			step = -1
		}
		i := (m.source.root.Chroma() + step + 12) % 12
		n := note.MustParse(exploreRoots[i])
		m.source.root = &n
		m.resetVoicing()

	case key.Matches(msg, m.keys.NextVoicing), key.Matches(msg, m.keys.PrevVoicing):
		if m.source.kind != fretboard.SourceChord {
			m.status = "voicings need a chord"
			return m, nil
		}
		if m.res == nil || m.res.Chord == nil || len(m.res.Chord.Positions) == 0 {
			m.status = "no fingerings in this window"
			return m, nil
		}
		// Voicing 0 shows every chord tone and sits between the last
		// fingering and the first.
		n := len(m.res.Chord.Positions) + 1
		step := 1
		if key.Matches(msg, m.keys.PrevVoicing) {
			step = -1
		}
		m.voicing = (m.voicing + step + n) % n

	case key.Matches(msg, m.keys.Tuning):
		names := tuning.Names()
		m.tuning = names[(slices.Index(names, m.tuning)+1)%len(names)]
		m.cursor.String = min(m.cursor.String, tuning.MustGet(m.tuning).StringCount())
		m.pressed = nil
		m.resetVoicing()

	case key.Matches(msg, m.keys.ShiftUp), key.Matches(msg, m.keys.ShiftDown):
		step := 1
		if key.Matches(msg, m.keys.ShiftDown) {
			step = -1
		}
		maxFret := m.base.MaxFret
		if maxFret <= 0 {
			maxFret = pipeline.DefaultMaxFret
		}
		if m.startFret+step < 0 || m.endFret+step > maxFret {
			return m, nil
		}
		m.startFret += step
		m.endFret += step
		m.cursor.Fret = min(max(m.cursor.Fret, m.startFret), m.endFret)
		m.resetVoicing()

	case key.Matches(msg, m.keys.Intervals):
		m.display.ShowIntervals = !m.display.ShowIntervals
	case key.Matches(msg, m.keys.Naming):
		m.display.Naming = (m.display.Naming + 1) % 3
	case key.Matches(msg, m.keys.Fingers):
		m.display.ShowFingers = !m.display.ShowFingers
	case key.Matches(msg, m.keys.AllNotes):
		m.allNotes = !m.allNotes

	default:
		return m, nil
	}
	return m, m.compute()
}

// cursorFret returns the cell under the cursor on the last computed board.
func (m exploreModel) cursorFret() (fretboard.Fret, bool) {
	if m.res == nil {
		return fretboard.Fret{}, false
	}
	return m.res.Fretboard.FretAt(m.cursor)
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("fretboard explore"))
	b.WriteString("\n\n")

	if m.res != nil {
		b.Write(m.res.Artifacts[pipeline.FormatText])
	}
	b.WriteString("\n")

	if f, ok := m.cursorFret(); ok {
		line := fmt.Sprintf("string %d fret %d: %s", m.cursor.String, m.cursor.Fret, f.Note)
		if f.Interval != "" {
			line += " (" + f.Interval + ")"
		}
		if f.Highlight != fretboard.HighlightNone {
			line += " " + f.Highlight.String()
		}
		b.WriteString(StyleValue.Render(line))
		b.WriteString("\n")
	}
	if m.res != nil && m.res.Chord != nil {
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("voicing %d of %d", m.voicing, len(m.res.Chord.Positions))))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.err))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status))
		b.WriteString("\n")
	}

	if m.input.Focused() {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
