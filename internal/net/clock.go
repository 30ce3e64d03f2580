package net

// clockAlpha is the EWMA gain for clock-offset samples. Small enough to ride
// out RTT jitter, large enough to converge within a few heartbeats.
const clockAlpha = 0.1

// ClockSync converges an estimate of the server clock relative to the local
// one from heartbeat echoes. Offsets are in milliseconds.
type ClockSync struct {
	offsetMS float64
	rttMS    float64
	samples  int
}

// Observe folds one heartbeat echo into the estimate. clientSent and
// receivedAt are local clock stamps; serverTime is the server clock stamp
// taken between them. The one-way delay is assumed to be half the round trip.
func (c *ClockSync) Observe(clientSent, serverTime, receivedAt int64) {
	rtt := receivedAt - clientSent
	if rtt < 0 {
		return
	}
	sample := float64(serverTime) + float64(rtt)/2 - float64(receivedAt)
	if c.samples == 0 {
		c.offsetMS = sample
		c.rttMS = float64(rtt)
	} else {
		c.offsetMS += clockAlpha * (sample - c.offsetMS)
		c.rttMS += clockAlpha * (float64(rtt) - c.rttMS)
	}
	c.samples++
}

// Synced reports whether at least one sample has been folded in.
func (c *ClockSync) Synced() bool { return c.samples > 0 }

// OffsetMillis is the current server-minus-local estimate.
func (c *ClockSync) OffsetMillis() float64 { return c.offsetMS }

// RTTMillis is the smoothed round trip.
func (c *ClockSync) RTTMillis() float64 { return c.rttMS }

// ServerNow maps a local millisecond timestamp onto the server clock.
func (c *ClockSync) ServerNow(localMillis int64) float64 {
	return float64(localMillis) + c.offsetMS
}
