package flyby

import (
	"time"

	"github.com/soypat/glgl/math/ms3"
	"go.uber.org/zap"
)

// StageStatus describes the active stage of a run.
type StageStatus struct {
	// Index counts stages started during the run, starting at 0.
	Index int
	Name  string
	// Progress is the un-eased time progress in [0,1].
	Progress float32
}

// Choreographer plays a [Choreography] on a [Camera].
//
// It never blocks nor spawns goroutines: all work happens inside [Choreographer.Tick],
// which the host calls once per frame before rendering. A Choreographer is not
// safe for concurrent use.
type Choreographer struct {
	cam Camera
	log *zap.Logger

	queue   []Stage
	active  Stage
	index   int
	from    ms3.Vec       // Camera position when the active stage started.
	elapsed time.Duration // Time spent in active stage.
	total   time.Duration // Time spent in run.
	running bool
	done    bool
}

// NewChoreographer returns a Choreographer that drives cam. A nil cam is
// accepted: the run advances in time but no camera writes happen.
// log may be nil.
func NewChoreographer(cam Camera, log *zap.Logger) *Choreographer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Choreographer{cam: cam, log: log}
}

// Start begins playback of ch's first stage and writes its starting camera
// state. Start is a no-op returning false if a run is already active or ch is empty.
func (c *Choreographer) Start(ch Choreography) bool {
	if c.running || len(ch) == 0 {
		return false
	}
	c.queue = append(c.queue[:0], ch...)
	c.index = -1
	c.total = 0
	c.running = true
	c.done = false
	c.log.Debug("choreography started", zap.Int("stages", len(ch)), zap.Duration("duration", ch.Duration()))
	c.advance()
	return true
}

// Cancel stops the active run immediately and discards queued stages. Camera
// state is left at its last written value. Cancel is idempotent.
func (c *Choreographer) Cancel() {
	if !c.running {
		return
	}
	c.log.Debug("choreography cancelled", zap.String("stage", c.active.Name), zap.Duration("at", c.total))
	c.stop()
}

// Tick advances the active stage by dt and writes the resulting camera state.
// Stages that complete within dt hand their leftover time to the next stage so
// the run's duration does not depend on tick size. Negative dt is ignored.
func (c *Choreographer) Tick(dt time.Duration) {
	if !c.running || dt < 0 {
		return
	}
	c.total += dt
	c.elapsed += dt
	for {
		p := c.progress()
		c.apply(p)
		if p < 1 {
			return
		}
		leftover := c.elapsed - max(c.active.Duration, 0)
		if !c.complete() {
			return
		}
		if leftover <= 0 {
			return
		}
		c.elapsed = leftover
	}
}

// Running reports whether a run is active.
func (c *Choreographer) Running() bool { return c.running }

// Done reports whether the last run played all its stages. It is reset by
// [Choreographer.Start] and is false after [Choreographer.Cancel].
func (c *Choreographer) Done() bool { return c.done }

// Elapsed returns the time played in the current or last run.
func (c *Choreographer) Elapsed() time.Duration { return c.total }

// Active returns the status of the active stage. ok is false when no run is active.
func (c *Choreographer) Active() (status StageStatus, ok bool) {
	if !c.running {
		return StageStatus{}, false
	}
	return StageStatus{
		Index:    c.index,
		Name:     c.active.Name,
		Progress: c.progress(),
	}, true
}

// Queued returns the number of stages waiting after the active one.
func (c *Choreographer) Queued() int { return len(c.queue) }

func (c *Choreographer) progress() float32 {
	d := c.active.Duration
	if d <= 0 || c.elapsed >= d {
		return 1
	}
	return float32(float64(c.elapsed) / float64(d))
}

func (c *Choreographer) apply(p float32) {
	if c.cam == nil || c.active.Path == nil {
		return
	}
	ease := c.active.Ease
	if ease == nil {
		ease = Linear
	}
	pos, lookAt := c.active.Path(c.from, ease(p))
	c.cam.SetPosition(pos)
	c.cam.LookAt(lookAt)
}

// complete finishes the active stage and starts the next one.
// It returns false if the run ended.
func (c *Choreographer) complete() bool {
	c.log.Debug("stage complete", zap.String("stage", c.active.Name), zap.Duration("at", c.total))
	if c.active.Next != nil {
		next := c.active.Next()
		if !c.running {
			// Cancelled from within Next.
			return false
		}
		if len(next) > 0 {
			c.queue = append(next[:len(next):len(next)], c.queue...)
		}
	}
	return c.advance()
}

// advance pops the next queued stage and writes its starting camera state.
func (c *Choreographer) advance() bool {
	if len(c.queue) == 0 {
		c.log.Debug("choreography done", zap.Duration("elapsed", c.total))
		c.stop()
		c.done = true
		return false
	}
	c.active = c.queue[0]
	c.queue[0] = Stage{}
	c.queue = c.queue[1:]
	c.index++
	c.elapsed = 0
	if c.cam != nil {
		c.from = c.cam.Position()
	}
	c.log.Debug("stage started", zap.Int("index", c.index), zap.String("stage", c.active.Name), zap.Duration("duration", c.active.Duration), zap.Duration("at", c.total))
	c.apply(0)
	return true
}

func (c *Choreographer) stop() {
	c.running = false
	c.done = false
	c.active = Stage{}
	clear(c.queue)
	c.queue = c.queue[:0]
	c.elapsed = 0
}
