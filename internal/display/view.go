package display

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-gamesim/internal/sim"
)

// NoteWindow is how long the last command and last error stay on screen.
const NoteWindow = 5 * time.Second

const clearScreen = "\033[2J\033[H"

const viewTemplate = `=== Game Engine State ===
{{ if .LastCommand }}
Last Command:
  {{ .LastCommand }}
{{ end -}}
{{ if .Error }}
Error:
  {{ .Error }}
{{ end }}
Entities:
{{ range .Entities }}
{{ .Name }} ({{ .Id }}){{ if .Status }} ({{ join ", " .Status }}){{ end }}
  Location: {{ .Location }}
{{- if .Target }}
  Target: {{ .Target }}
{{- end }}
{{ end }}
Static Objects:
{{ range .Objects }}
{{ .Name }} ({{ .Id }})
  Location: {{ .Location }}
{{ end }}`

// View renders the simulation state as a console status page. It implements
// driver.Ticker so it can run at its own cadence, faster than the
// simulation tick.
type View struct {
	state *sim.State
	out   io.Writer
	tmpl  *template.Template
	now   func() time.Time
}

func NewView(state *sim.State, out io.Writer) (*View, error) {
	tmpl, err := template.New("view").Funcs(sprig.TxtFuncMap()).Parse(viewTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing view template: %w", err)
	}

	return &View{
		state: state,
		out:   out,
		tmpl:  tmpl,
		now:   time.Now,
	}, nil
}

func (v *View) Tick(ctx context.Context) error {
	now := v.now()
	text, err := v.Render(v.state.Snapshot(now), now)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(v.out, clearScreen+text)
	return err
}

// Render produces the status page for a snapshot.
func (v *View) Render(snap *sim.Snapshot, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := v.tmpl.Execute(&buf, buildModel(snap, now))
	if err != nil {
		return "", fmt.Errorf("executing view template: %w", err)
	}
	return buf.String(), nil
}

type entityLine struct {
	Id       string
	Name     string
	Status   []string
	Location string
	Target   string
}

type objectLine struct {
	Id       string
	Name     string
	Location string
}

type viewModel struct {
	LastCommand string
	Error       string
	Entities    []entityLine
	Objects     []objectLine
}

func movementVerb(kind sim.MovementKind) string {
	if kind == sim.MovementRun {
		return "running"
	}
	return "walking"
}

func buildModel(snap *sim.Snapshot, now time.Time) *viewModel {
	m := &viewModel{}

	if snap.LastCommand != nil && now.Sub(snap.LastCommand.At) < NoteWindow {
		m.LastCommand = snap.LastCommand.Text
	}
	if snap.LastError != nil && now.Sub(snap.LastError.At) < NoteWindow {
		m.Error = Wrap(snap.LastError.Text)
	}

	for _, e := range snap.Entities {
		line := entityLine{
			Id:       e.Id,
			Name:     e.Name,
			Location: e.Location.String(),
		}
		if e.Sleeping {
			if e.SleepRemaining != nil {
				line.Status = append(line.Status, fmt.Sprintf("sleeping for %.1fs", e.SleepRemaining.Seconds()))
			} else {
				line.Status = append(line.Status, "sleeping")
			}
		}
		if e.Moving {
			line.Status = append(line.Status, fmt.Sprintf("%s - %.1f units to target", movementVerb(e.Kind), e.Distance))
		}
		if e.Target != nil {
			line.Target = e.Target.String()
		}
		m.Entities = append(m.Entities, line)
	}

	for _, o := range snap.Houses {
		m.Objects = append(m.Objects, objectLine{Id: o.Id, Name: o.Name, Location: o.Location.String()})
	}
	for _, o := range snap.Stores {
		m.Objects = append(m.Objects, objectLine{Id: o.Id, Name: o.Name, Location: o.Location.String()})
	}

	return m
}
