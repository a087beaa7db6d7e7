package heightfield

import (
	"context"
	"fmt"
	"sync"
)

// Worker protocol commands.
const (
	CmdProcessHeightfield = "processHeightfield"
	CmdDone               = "done"
)

// RawPayload is the immutable copy of a sampled grid sent to the worker.
type RawPayload struct {
	NX      int       `json:"nx"`
	NY      int       `json:"ny"`
	Width   float64   `json:"width"`
	Depth   float64   `json:"depth"`
	MinY    float64   `json:"minY"` // Sentinel value
	Heights []float64 `json:"heights"`
}

// Request asks the worker to refine one raw grid.
type Request struct {
	Cmd     string     `json:"cmd"`
	Payload RawPayload `json:"payload"`
}

// Response carries the complete refined result back. Exactly one response is
// produced per request; there are no partial or streaming results.
type Response struct {
	Cmd     string  `json:"cmd"`
	Payload *Result `json:"payload,omitempty"`
	Err     string  `json:"error,omitempty"`
}

type workItem struct {
	req   Request
	reply chan Response
}

// Worker refines heightfields off the caller's goroutine via one-shot
// request/response message passing. The caller hands over a private copy of
// the raw grid; the worker clones it again before mutating, so no memory is
// shared across the exchange.
type Worker struct {
	cfg RefineConfig

	mu      sync.Mutex
	running bool
	work    chan workItem
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWorker creates a refinement worker. Call Start before Process.
func NewWorker(cfg RefineConfig) *Worker {
	return &Worker{cfg: cfg}
}

// Start launches the worker goroutine. Starting a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.work = make(chan workItem)
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.run()
}

// Stop shuts the worker down and waits for the goroutine to exit. In-flight
// requests complete first.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
}

func (w *Worker) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case item := <-w.work:
			item.reply <- w.handle(item.req)
		}
	}
}

func (w *Worker) handle(req Request) Response {
	if req.Cmd != CmdProcessHeightfield {
		return Response{Cmd: CmdDone, Err: fmt.Sprintf("unknown command %q", req.Cmd)}
	}

	p := req.Payload
	raw := &Grid{
		NX:      p.NX,
		NY:      p.NY,
		Width:   p.Width,
		Depth:   p.Depth,
		Heights: p.Heights,
	}
	res, err := Refine(raw, p.MinY, w.cfg)
	if err != nil {
		return Response{Cmd: CmdDone, Err: err.Error()}
	}
	return Response{Cmd: CmdDone, Payload: res}
}

// Process sends one refinement request and blocks for its single response.
// The context bounds only the wait; a dispatched request always runs to
// completion on the worker.
func (w *Worker) Process(ctx context.Context, payload RawPayload) (*Result, error) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil, fmt.Errorf("heightfield worker not started")
	}
	work := w.work
	w.mu.Unlock()

	item := workItem{
		req:   Request{Cmd: CmdProcessHeightfield, Payload: payload},
		reply: make(chan Response, 1),
	}

	select {
	case work <- item:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	resp := <-item.reply
	if resp.Err != "" {
		return nil, fmt.Errorf("heightfield worker: %s", resp.Err)
	}
	return resp.Payload, nil
}

// PayloadFromGrid copies a sampled grid into a worker payload. The copy keeps
// the caller's grid and the worker's input disjoint.
func PayloadFromGrid(g *Grid, sentinel float64) RawPayload {
	heights := make([]float64, len(g.Heights))
	copy(heights, g.Heights)
	return RawPayload{
		NX:      g.NX,
		NY:      g.NY,
		Width:   g.Width,
		Depth:   g.Depth,
		MinY:    sentinel,
		Heights: heights,
	}
}
