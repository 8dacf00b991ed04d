package coroutine

import "time"

// nowNano is the clock source for telemetry timestamps. Kept as a single
// indirection point so tests can observe call sites without faking the
// runtime clock.
func nowNano() int64 {
	return time.Now().UnixNano()
}
