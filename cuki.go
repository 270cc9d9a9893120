package cuki

import (
	"sync/atomic"

	"github.com/cukiwss/cuki/internal/aging"
	"github.com/cukiwss/cuki/internal/ccf"
	"github.com/cukiwss/cuki/internal/irr"
)

// Estimator drives a CCF from a stream of (key, size) references and
// answers working-set-size and inter-reference-recency queries (spec §2,
// §4.5). All exported methods are safe for concurrent use.
type Estimator struct {
	cfg     *config
	filter  *ccf.CCF
	ager    *aging.Controller // nil when cfg.OppoAging is set
	metrics *Metrics

	lastSeen *irr.LastSeenIndex
	hist     *irr.Histogram

	refCount atomic.Uint64

	scopeWSS []atomic.Int64 // len == cfg.NumScope; nil when ScopeBits == 0
}

// New constructs an Estimator. It returns a [ErrConfigInvalid]-wrapping
// error instead of panicking when the assembled configuration violates a
// construction invariant (spec §7).
func New(opts ...Option) (*Estimator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	sizeEncode := ccf.SizeLinear
	if cfg.SizeEncode == SizeBucket {
		sizeEncode = ccf.SizeBucket
	}

	filter := ccf.New(ccf.Config{
		TagsPerBucket:  cfg.TagsPerBucket,
		TagBits:        cfg.TagBits,
		SizeEncode:     sizeEncode,
		SizeBits:       cfg.SizeBits,
		SizeBucketBits: cfg.SizeBucketBits,
		ClockBits:      cfg.ClockBits,
		ScopeBits:      cfg.ScopeBits,
		NumBuckets:     uint64(cfg.NumBuckets),
		LockNumber:     cfg.LockNumber,
		MaxKicks:       cfg.MaxKicks,
		OppoAging:      cfg.OppoAging,
		Hasher:         cfg.hasher(),
	})

	e := &Estimator{
		cfg:      cfg,
		filter:   filter,
		metrics:  newMetrics(),
		lastSeen: irr.NewLastSeenIndex(cfg.IRRShardCount),
		hist:     irr.NewHistogram(),
	}
	if !cfg.OppoAging {
		maxClock := (uint64(1) << uint(cfg.ClockBits)) - 1
		e.ager = aging.NewController(cfg.WindowSize, maxClock, uint64(cfg.NumBuckets))
	}
	if cfg.ScopeBits > 0 && cfg.NumScope > 0 {
		e.scopeWSS = make([]atomic.Int64, cfg.NumScope)
	}
	return e, nil
}

func validate(cfg *config) error {
	if !isPowerOfTwo(cfg.NumBuckets) {
		return configError("NUM_BUCKETS (%d) must be a power of two", cfg.NumBuckets)
	}
	if !isPowerOfTwo(cfg.LockNumber) {
		return configError("LOCK_NUMBER (%d) must be a power of two", cfg.LockNumber)
	}
	if cfg.TagsPerBucket <= 0 {
		return configError("TAGS_PER_BUCKET must be positive, got %d", cfg.TagsPerBucket)
	}
	if cfg.TagBits <= 0 {
		return configError("TAG_BITS must be positive, got %d", cfg.TagBits)
	}
	if cfg.SizeBits <= 0 {
		return configError("SIZE_BITS must be positive, got %d", cfg.SizeBits)
	}
	if cfg.ClockBits <= 0 {
		return configError("CLOCK_BITS must be positive, got %d", cfg.ClockBits)
	}
	if cfg.SizeBits+cfg.SizeBucketBits > 32 {
		return configError("SIZE_BITS+SIZE_BUCKET_BITS (%d) exceeds 32", cfg.SizeBits+cfg.SizeBucketBits)
	}
	if cfg.ScopeBits > 0 && cfg.NumScope <= 0 {
		return configError("NUM_SCOPE must be positive when SCOPE_BITS > 0")
	}
	if cfg.MaxKicks <= 0 {
		return configError("MAX_KICKS must be positive, got %d", cfg.MaxKicks)
	}
	if cfg.WindowSize <= 0 {
		return configError("WINDOW_SIZE must be positive, got %d", cfg.WindowSize)
	}
	return nil
}

// Put records a reference to key with the given byte size, inserting or
// refreshing its slot in the CCF (spec §4.3, §6's input contract).
func (e *Estimator) Put(key []byte, size uint64) {
	e.put(key, size, 0)
}

// PutScoped is Put with an explicit scope tag in [0, NUM_SCOPE), used when
// per-scope accounting is enabled via [WithScopes].
func (e *Estimator) PutScoped(key []byte, size, scope uint64) {
	e.put(key, size, scope)
}

func (e *Estimator) put(key []byte, size, scope uint64) {
	if size == 0 {
		return
	}

	before, hadScope := e.scopeSizeBefore(key, scope)
	outcome, drop := e.filter.PutScoped(key, size, scope)
	e.metrics.recordOutcome(outcome)

	if e.scopeWSS != nil {
		e.applyScopeDelta(outcome, scope, size, before, hadScope, drop)
	}

	if outcome == ccf.Dropped {
		if e.cfg.OnDrop != nil {
			e.cfg.OnDrop(e.cfg.hasher()(key), drop.Size)
		}
	}

	refIndex := e.refCount.Add(1)

	keyHash := e.cfg.hasher()(key)
	if prev, existed := e.lastSeen.Touch(keyHash, refIndex); existed && refIndex > prev {
		e.hist.Observe(refIndex - prev)
	}

	if e.ager != nil {
		if freed, _ := e.ager.OnReference(e.filter); freed > 0 {
			e.metrics.recordAged(int64(freed))
		}
	}

	e.maybeSample(refIndex)
	e.maybeReconcile(refIndex)
}

// scopeSizeBefore reads the pre-put decoded size of key, used to compute a
// refresh delta for per-scope accounting. Returns hadScope=false when
// scoping is disabled.
func (e *Estimator) scopeSizeBefore(key []byte, scope uint64) (uint64, bool) {
	if e.scopeWSS == nil {
		return 0, false
	}
	size, ok := e.filter.SizeOf(key)
	return size, ok
}

// applyScopeDelta updates the per-scope running sums to reflect one put's
// outcome. It is a facade-level approximation: the CCF itself only tracks
// a single global sum, so scope bookkeeping here may drift under heavy
// concurrent displacement the same way the global sum does, corrected by
// the same periodic reconciliation.
func (e *Estimator) applyScopeDelta(outcome ccf.PutOutcome, scope, size uint64, before uint64, hadBefore bool, drop ccf.DropInfo) {
	if int(scope) >= len(e.scopeWSS) {
		return
	}
	switch outcome {
	case ccf.Inserted:
		e.scopeWSS[scope].Add(int64(size))
	case ccf.Refreshed:
		if hadBefore && size > before {
			e.scopeWSS[scope].Add(int64(size - before))
		}
	case ccf.Displaced:
		e.scopeWSS[scope].Add(int64(size))
	case ccf.Dropped:
		e.scopeWSS[scope].Add(int64(size))
		if int(drop.Scope) < len(e.scopeWSS) {
			e.scopeWSS[drop.Scope].Add(-int64(drop.Size))
		}
	}
}

func (e *Estimator) maybeSample(refIndex uint64) {
	interval := e.cfg.ReportInterval / e.cfg.TimeDivisor
	if interval < 1 {
		interval = 1
	}
	if refIndex%uint64(interval) != 0 {
		return
	}
	wss := e.filter.WSS()
	e.metrics.recordSample()
	if e.cfg.OnSample != nil {
		e.cfg.OnSample(refIndex, wss)
	}
}

// reconcileIntervalMultiplier sets the reconciliation cadence as a multiple
// of ReportInterval: far enough apart that
// the full-table scan in Reconcile doesn't dominate hot-path cost, close
// enough to bound drift from concurrent over-counting (spec §5).
const reconcileIntervalMultiplier = 64

func (e *Estimator) maybeReconcile(refIndex uint64) {
	interval := e.cfg.ReportInterval * reconcileIntervalMultiplier
	if interval < 1 {
		interval = 1
	}
	if refIndex%uint64(interval) != 0 {
		return
	}
	e.filter.Reconcile()
	e.metrics.recordReconcile()
}

// SizeOf returns the decoded size of key if it is currently resident in
// the CCF (spec §4.3).
func (e *Estimator) SizeOf(key []byte) (uint64, bool) {
	size, ok := e.filter.SizeOf(key)
	if ok {
		e.metrics.recordHit()
	} else {
		e.metrics.recordMiss()
	}
	return size, ok
}

// WSS returns the current working-set-size estimate in bytes.
func (e *Estimator) WSS() uint64 {
	return e.filter.WSS()
}

// ScopeWSS returns the running sum attributed to scope, when per-scope
// accounting is enabled via [WithScopes]. ok is false otherwise or when
// scope is out of range.
func (e *Estimator) ScopeWSS(scope uint64) (size uint64, ok bool) {
	if e.scopeWSS == nil || int(scope) >= len(e.scopeWSS) {
		return 0, false
	}
	v := e.scopeWSS[scope].Load()
	if v < 0 {
		return 0, true
	}
	return uint64(v), true
}

// Reconcile forces an immediate full-table recomputation of the running
// WSS sum, bounding drift from concurrent over-counting (spec §5). It runs
// automatically on a cadence derived from ReportInterval; this method
// exposes a manual trigger.
func (e *Estimator) Reconcile() uint64 {
	total := e.filter.Reconcile()
	e.metrics.recordReconcile()
	return total
}

// IRRHistogram returns the log-scale histogram of inter-reference-recency
// samples accumulated so far (spec §4.5).
func (e *Estimator) IRRHistogram() *irr.Histogram {
	return e.hist
}

// Metrics returns a point-in-time snapshot of the estimator's counters.
func (e *Estimator) Metrics() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// References returns the total number of Put calls observed so far.
func (e *Estimator) References() uint64 {
	return e.refCount.Load()
}
