// FILE: lixenwraith/reflector/flowid/flowid.go

// Package flowid generates roughly time-ordered 64-bit identifiers.
//
// Layout, high to low: 1 reserved bit, 41 bits of milliseconds since the epoch,
// 10 bits of worker id, 12 bits of sequence.
package flowid

import (
	"math/rand/v2"
	"sync/atomic"
	"time"
)

const (
	workerBits   = 10
	sequenceBits = 12
	timeBits     = 41

	workerMask   = 1<<workerBits - 1
	sequenceMask = 1<<sequenceBits - 1
	timeMask     = 1<<timeBits - 1
	timeShift    = workerBits + sequenceBits
)

// DefaultEpoch is the Unix epoch.
var DefaultEpoch = time.Unix(0, 0).UTC()

// Config holds the loadable generator settings. A negative WorkerID picks a random worker.
type Config struct {
	Epoch    time.Time `toml:"epoch"`
	WorkerID int       `toml:"worker_id"`
}

// DefaultConfig returns the Unix epoch and a random worker.
func DefaultConfig() Config {
	return Config{Epoch: DefaultEpoch, WorkerID: -1}
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithEpoch sets the zero point of the timestamp component.
func WithEpoch(epoch time.Time) Option {
	return func(c *Config) {
		c.Epoch = epoch
	}
}

// WithWorkerID fixes the worker component. Only the low 10 bits are used.
func WithWorkerID(id int) Option {
	return func(c *Config) {
		c.WorkerID = id
	}
}

// WithConfig replaces the whole configuration, typically one scanned from settings.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// Generator hands out identifiers. It is safe for concurrent use.
type Generator struct {
	epoch    time.Time
	workerID int64
	sequence atomic.Int64
	now      func() time.Time
}

// New builds a Generator.
func New(opts ...Option) *Generator {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = DefaultEpoch
	}
	worker := cfg.WorkerID
	if worker < 0 {
		worker = rand.IntN(workerMask + 1)
	}
	return &Generator{
		epoch:    cfg.Epoch,
		workerID: int64(worker) & workerMask,
		now:      time.Now,
	}
}

// WorkerID returns the 10-bit worker component.
func (g *Generator) WorkerID() int {
	return int(g.workerID)
}

// NewID returns the next identifier. The sequence wraps modulo 4096.
func (g *Generator) NewID() int64 {
	ms := g.now().Sub(g.epoch).Milliseconds() & timeMask
	seq := g.sequence.Add(1) & sequenceMask
	return ms<<timeShift | g.workerID<<sequenceBits | seq
}

// Parts is an identifier split into its components.
type Parts struct {
	Time     time.Time
	WorkerID int
	Sequence int
}

// Decompose splits id using the generator's epoch.
func (g *Generator) Decompose(id int64) Parts {
	ms := id >> timeShift & timeMask
	return Parts{
		Time:     g.epoch.Add(time.Duration(ms) * time.Millisecond),
		WorkerID: int(id >> sequenceBits & workerMask),
		Sequence: int(id & sequenceMask),
	}
}
