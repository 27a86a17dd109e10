package process

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// Factory launches the external simulator as a child process speaking a JSON
// line protocol: one handshake frame on startup, then one frame per "step"
// command. The child's lifetime is bound to the run context.
type Factory struct {
	command string
	args    []string
}

// NewFactory creates a simulator factory around the given command.
func NewFactory(command string, args ...string) *Factory {
	return &Factory{command: command, args: args}
}

// Create implements ports.SimulatorFactory.
func (f *Factory) Create(ctx context.Context, art *ports.Artifacts, configName string) (ports.Simulator, error) {
	args := append(append([]string(nil), f.args...), "--config", configName, "--job", art.JobName)
	cmd := exec.CommandContext(ctx, f.command, args...)
	if len(art.Files) > 0 {
		cmd.Dir = filepath.Dir(art.Files[0])
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open simulator stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open simulator stdout: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start simulator: %w", err)
	}

	sim := &Sim{
		cmd:    cmd,
		stdin:  stdin,
		frames: bufio.NewScanner(stdout),
		stderr: &stderr,
		units:  make(map[string]unitState),
	}
	sim.frames.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	// Handshake: the first frame carries the unit roster and the initial
	// grid, before any cycle has run.
	if err := sim.readFrame(); err != nil {
		_ = sim.Close()
		return nil, fmt.Errorf("simulator handshake failed: %w", err)
	}
	if sim.grid == nil {
		_ = sim.Close()
		return nil, fmt.Errorf("simulator handshake carried no grid")
	}
	for name := range sim.units {
		sim.order = append(sim.order, name)
	}
	sort.Strings(sim.order)
	return sim, nil
}

type unitState struct {
	Done  bool   `json:"done"`
	State string `json:"state"`
}

type unitSnapshot struct{ u unitState }

func (s unitSnapshot) Done() bool    { return s.u.Done }
func (s unitSnapshot) State() string { return s.u.State }

type gridFrame struct {
	Rows    int                 `json:"rows"`
	Cols    int                 `json:"cols"`
	Patches []domain.PatchState `json:"patches"`
}

type frame struct {
	Cycle   uint64               `json:"cycle"`
	Retired *ports.Retirement    `json:"retired,omitempty"`
	Units   map[string]unitState `json:"units,omitempty"`
	Grid    *gridFrame           `json:"grid,omitempty"`
	Fault   string               `json:"fault,omitempty"`
}

// Sim implements ports.Simulator over the child's frame stream.
type Sim struct {
	cmd       *exec.Cmd
	closeOnce sync.Once
	stdin     io.WriteCloser
	frames    *bufio.Scanner
	stderr    *bytes.Buffer

	cycle   uint64
	order   []string
	units   map[string]unitState
	grid    *domain.PatchGrid
	retired *ports.Retirement
}

// Close tears the child down and reaps it. Closing stdin tells a
// well-behaved backend to exit; the kill covers the rest. The Wait is what
// collects the process table entry, so it runs even when the child already
// died. Idempotent.
func (s *Sim) Close() error {
	s.closeOnce.Do(func() {
		_ = s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		// The exit status is meaningless after the kill above.
		_ = s.cmd.Wait()
	})
	return nil
}

// readFrame consumes one frame and folds it into the visible state. Units
// and grid are sparse: an omitted field means "unchanged".
func (s *Sim) readFrame() error {
	if !s.frames.Scan() {
		if err := s.frames.Err(); err != nil {
			return fmt.Errorf("simulator stream error: %w", err)
		}
		return fmt.Errorf("simulator exited early (stderr: %s)", s.stderr.String())
	}

	var fr frame
	if err := json.Unmarshal(s.frames.Bytes(), &fr); err != nil {
		return fmt.Errorf("malformed simulator frame: %w", err)
	}
	if fr.Fault != "" {
		return &domain.SimulationFault{Cycle: fr.Cycle, Cause: fmt.Errorf("%s", fr.Fault)}
	}

	s.cycle = fr.Cycle
	s.retired = fr.Retired
	for name, u := range fr.Units {
		s.units[name] = u
	}
	if fr.Grid != nil {
		grid, err := domain.NewPatchGrid(fr.Grid.Rows, fr.Grid.Cols, fr.Grid.Patches)
		if err != nil {
			return fmt.Errorf("malformed simulator grid: %w", err)
		}
		s.grid = grid
	}
	return nil
}

func (s *Sim) Step() error {
	if _, err := io.WriteString(s.stdin, "step\n"); err != nil {
		return fmt.Errorf("failed to command simulator step: %w", err)
	}
	return s.readFrame()
}

func (s *Sim) Cycle() uint64 { return s.cycle }

func (s *Sim) UnitNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Sim) Unit(name string) (ports.UnitSnapshot, bool) {
	u, ok := s.units[name]
	if !ok {
		return nil, false
	}
	return unitSnapshot{u: u}, true
}

func (s *Sim) Grid() *domain.PatchGrid { return s.grid }

func (s *Sim) Retired() (ports.Retirement, bool) {
	if s.retired == nil {
		return ports.Retirement{}, false
	}
	return *s.retired, true
}

var _ ports.Simulator = (*Sim)(nil)
var _ io.Closer = (*Sim)(nil)
var _ ports.SimulatorFactory = (*Factory)(nil)
