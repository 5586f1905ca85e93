package litebrite

import (
	"time"
)

// debugLogInterval is how often aggregated frame stats are logged.
const debugLogInterval = time.Second

// frameStats aggregates render timing between debug log lines. Only the
// presentation goroutine touches it.
type frameStats struct {
	frames    int
	failures  int
	total     time.Duration
	worst     time.Duration
	lastFlush time.Time
}

// FrameStats is a point-in-time view of render timing.
type FrameStats struct {
	Frames   int
	Failures int
	Average  time.Duration
	Worst    time.Duration
}

func (st *frameStats) record(d time.Duration, err error) {
	if err != nil {
		st.failures++
		return
	}
	st.frames++
	st.total += d
	st.worst = max(st.worst, d)
}

func (st *frameStats) snapshot() FrameStats {
	out := FrameStats{Frames: st.frames, Failures: st.failures, Worst: st.worst}
	if st.frames > 0 {
		out.Average = st.total / time.Duration(st.frames)
	}
	return out
}

// maybeLog emits one Debug line per interval and resets the window.
func (st *frameStats) maybeLog(backend string) {
	now := time.Now()
	if st.lastFlush.IsZero() {
		st.lastFlush = now
		return
	}
	if now.Sub(st.lastFlush) < debugLogInterval {
		return
	}
	snap := st.snapshot()
	Logger().Debug("frame stats",
		"backend", backend,
		"frames", snap.Frames,
		"failures", snap.Failures,
		"avg", snap.Average,
		"worst", snap.Worst)
	*st = frameStats{lastFlush: now}
}

// Stats returns render timing since the last debug log window. Call it from
// the goroutine that renders.
func (s *Session) Stats() FrameStats {
	return s.stats.snapshot()
}
