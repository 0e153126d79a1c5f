package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	gohumanize "github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"miditempo/internal/audio"
	"miditempo/internal/config"
	"miditempo/internal/errmsg"
	"miditempo/internal/midiproc"
	"miditempo/internal/midisource"
	"miditempo/internal/transport"
)

var (
	statusStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type app struct {
	ctrl *transport.Controller

	folder      string // where MIDI files are picked from
	currentPath string // full path of the loaded file
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}

	log := newLogger()
	defer log.Sync()

	var backend audio.Backend
	var synth *audio.Synth
	if cfg.HasSoundFont() {
		synth, err = audio.NewSynth(cfg.SoundFont, log)
		if err != nil {
			fmt.Println(errorStyle.Render(errmsg.Format(errmsg.OpAudioInit, err)))
			fmt.Println(dimStyle.Render("continuing without audio output"))
		} else {
			backend = synth
		}
	} else {
		fmt.Println(dimStyle.Render("no soundfont configured, position tracking only"))
	}

	ctrl := transport.New(backend, log,
		transport.WithPollInterval(cfg.PollInterval()),
		transport.WithDefaultTempo(cfg.DefaultBPM),
	)

	folder := cfg.MidiFolder
	if folder == "" {
		folder, err = os.Getwd()
		if err != nil {
			fmt.Println(errmsg.Format(errmsg.OpInitialize, err))
			os.Exit(1)
		}
	}

	a := &app{ctrl: ctrl, folder: folder}
	a.run()

	ctrl.Close()
	if synth != nil {
		synth.Close()
	}
}

func newLogger() *zap.Logger {
	logPath := filepath.Join(xdg.StateHome, "miditempo", "miditempo.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (a *app) run() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "miditempo> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("play"),
			readline.PcItem("stop"),
			readline.PcItem("tempo"),
			readline.PcItem("seek"),
			readline.PcItem("status"),
			readline.PcItem("file"),
			readline.PcItem("humanize"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		fmt.Println(errmsg.Format(errmsg.OpInitialize, err))
		return
	}
	defer rl.Close()

	go a.watchEvents(rl.Stdout())

	// Pick an initial file up front, like dropping the needle on a record.
	if path := a.pickFile(rl); path != "" {
		a.load(path)
	}

	printHelp()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "p", "play", "pause", "resume":
			a.toggle()
		case "s", "stop":
			if !a.ctrl.Stop() {
				fmt.Println(dimStyle.Render("nothing playing"))
			}
		case "b", "tempo":
			a.setTempo(args)
		case "k", "seek":
			a.seek(args)
		case "t", "status":
			fmt.Println(statusView(a.ctrl.Status()))
		case "f", "file":
			if path := a.pickFile(rl); path != "" {
				a.load(path)
			}
		case "h", "humanize":
			a.humanize()
		case "help", "?":
			printHelp()
		case "q", "quit", "exit":
			return
		default:
			fmt.Println(dimStyle.Render("unknown command, try 'help'"))
		}
	}
}

// watchEvents mirrors transport events onto the terminal without blocking
// the transport: buffered channels drop events the display cannot keep up
// with.
func (a *app) watchEvents(w io.Writer) {
	sub := a.ctrl.Subscribe()
	for {
		select {
		case e := <-sub.StateChanged:
			if e.Previous == transport.Playing && e.Current == transport.Stopped {
				fmt.Fprintln(w, dimStyle.Render("\r■ stopped"))
			}
		case e := <-sub.Error:
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("\raudio %s failed: %v (tracking silently)", e.Operation, e.Err)))
		case <-sub.Done:
			return
		}
	}
}

func (a *app) toggle() {
	st := a.ctrl.Status()
	switch st.State {
	case transport.Playing:
		a.ctrl.Pause()
		fmt.Println(dimStyle.Render("⏸ paused"))
	case transport.Paused:
		a.ctrl.Resume()
		fmt.Println(dimStyle.Render("▶ resumed"))
	default:
		if err := a.ctrl.Play(st.Position); err != nil {
			if errors.Is(err, transport.ErrNoSourceLoaded) {
				fmt.Println(dimStyle.Render("no file loaded, use 'file' first"))
				return
			}
			fmt.Println(errmsg.Format(errmsg.OpPlaybackStart, err))
			return
		}
		fmt.Println(dimStyle.Render("▶ playing"))
	}
}

func (a *app) setTempo(args []string) {
	if len(args) != 1 {
		fmt.Println(dimStyle.Render("usage: tempo <bpm>"))
		return
	}
	bpm, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpTempoSet, args[0], err))
		return
	}
	if err := a.ctrl.SetTempo(bpm); err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpTempoSet, args[0], err))
		return
	}
	st := a.ctrl.Status()
	fmt.Printf("tempo %.1f BPM, duration now %s\n", bpm, formatDuration(st.Duration))
	if st.IsPlaying() {
		fmt.Println(dimStyle.Render("takes effect on next play or seek"))
	}
}

func (a *app) seek(args []string) {
	if len(args) != 1 {
		fmt.Println(dimStyle.Render("usage: seek <seconds>"))
		return
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpPlaybackSeek, args[0], err))
		return
	}
	pos := time.Duration(secs * float64(time.Second))
	if err := a.ctrl.Seek(pos); err != nil {
		switch {
		case errors.Is(err, transport.ErrNoSourceLoaded):
			fmt.Println(dimStyle.Render("no file loaded, use 'file' first"))
		case errors.Is(err, transport.ErrOutOfRange):
			st := a.ctrl.Status()
			fmt.Printf("position out of range, file runs 0:00 to %s\n", formatDuration(st.Duration))
		default:
			fmt.Println(errmsg.Format(errmsg.OpPlaybackSeek, err))
		}
		return
	}
	fmt.Printf("position %s\n", formatDuration(pos))
}

// pickFile lists the MIDI files in the working folder and reads a choice:
// a number from the list, an exact name, or a unique prefix. Empty input
// cancels.
func (a *app) pickFile(rl *readline.Instance) string {
	names, err := midisource.ListDir(a.folder)
	if err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpSourceList, a.folder, err))
		return ""
	}
	if len(names) == 0 {
		fmt.Printf("no MIDI files in %s\n", a.folder)
		return ""
	}

	fmt.Printf("MIDI files in %s:\n", a.folder)
	for i, name := range names {
		fmt.Printf("  %s %s\n", dimStyle.Render(fmt.Sprintf("%2d.", i+1)), name)
	}

	rl.SetPrompt("file> ")
	defer rl.SetPrompt("miditempo> ")

	line, err := rl.Readline()
	if err != nil {
		return ""
	}
	choice := strings.TrimSpace(line)
	if choice == "" {
		return ""
	}

	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(names) {
			fmt.Printf("no file %d, pick 1-%d\n", n, len(names))
			return ""
		}
		return filepath.Join(a.folder, names[n-1])
	}

	var matches []string
	for _, name := range names {
		if name == choice {
			return filepath.Join(a.folder, name)
		}
		if strings.HasPrefix(name, choice) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return filepath.Join(a.folder, matches[0])
	case 0:
		fmt.Printf("no file matching %q\n", choice)
	default:
		fmt.Printf("%q is ambiguous: %s\n", choice, strings.Join(matches, ", "))
	}
	return ""
}

func (a *app) load(path string) {
	src, err := midisource.Load(path)
	if err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpSourceLoad, filepath.Base(path), err))
		return
	}
	if err := a.ctrl.LoadSource(src); err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpSourceLoad, filepath.Base(path), err))
		return
	}
	a.currentPath = path

	fmt.Printf("loaded %s: %s, %.1f BPM, %s notes\n",
		src.Name(),
		formatDuration(src.Duration()),
		src.BaseTempo(),
		gohumanize.Comma(int64(src.NoteCount())))
}

// humanize writes a jittered copy of the loaded file next to the original.
func (a *app) humanize() {
	if a.currentPath == "" {
		fmt.Println(dimStyle.Render("no file loaded, use 'file' first"))
		return
	}

	ext := filepath.Ext(a.currentPath)
	out := strings.TrimSuffix(a.currentPath, ext) + "_humanized" + ext

	if err := midiproc.HumanizeFile(a.currentPath, out, midiproc.DefaultHumanizeOptions()); err != nil {
		fmt.Println(errmsg.FormatWith(errmsg.OpHumanize, filepath.Base(a.currentPath), err))
		return
	}
	fmt.Printf("wrote %s\n", out)
}

func statusView(st transport.Status) string {
	if !st.SourceLoaded {
		return statusStyle.Render("no file loaded")
	}

	icon := "■"
	switch st.State {
	case transport.Playing:
		icon = "▶"
	case transport.Paused:
		icon = "⏸"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s / %s\n",
		icon, st.SourceName, formatDuration(st.Position), formatDuration(st.Duration))
	fmt.Fprintf(&b, "tempo %.1f BPM", st.CurrentTempo)
	if st.CurrentTempo != st.OriginalTempo {
		fmt.Fprintf(&b, " (authored %.1f)", st.OriginalTempo)
	}
	if st.Silent {
		b.WriteString("  [no audio]")
	}
	return statusStyle.Render(b.String())
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

func printHelp() {
	fmt.Println(dimStyle.Render(strings.TrimSpace(`
p          play / pause toggle
s          stop and rewind
b <bpm>    set playback tempo
k <secs>   seek to position
t          show status
f          pick another file
h          write a humanized copy
q          quit`)))
}
