package net

import (
	"math"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
	"dust-and-lead/server/internal/net/proto"
	"dust-and-lead/server/internal/sim"
	"dust-and-lead/server/logging"
)

const (
	// maxPendingInputs bounds the unacknowledged input ring; four seconds of
	// inputs at the fixed tick rate. Past that the link is dead anyway.
	maxPendingInputs = 4 * sim.TickRate

	// hardSnapDistance is the misprediction error beyond which smoothing is
	// abandoned and the view snaps to the authoritative position.
	hardSnapDistance = 96.0

	// offsetDecayRate is the exponential decay constant for the visual
	// offset, in 1/seconds.
	offsetDecayRate = 10.0
)

// Client is the prediction side of the protocol. It owns a shadow world
// holding only the local player, advances it through the restricted
// prediction pipeline for zero-latency feedback, and reconciles it against
// each authoritative snapshot by replaying unacknowledged inputs. Remote
// entities are never simulated here; they render through the Interpolator.
type Client struct {
	shadow  *sim.World
	pred    *sim.Pipeline
	local   ecs.Entity
	localID uint32

	nextSeq uint64
	pending []sim.InputState

	offX, offY float64

	clock  ClockSync
	interp Interpolator

	disconnected bool
}

// NewClient builds a shadow world from the join response. The seed must be
// the server's so terrain and the movement systems agree exactly; any
// divergence there turns every reconciliation into a correction.
func NewClient(join proto.JoinResponse, catalog *content.Catalog) (*Client, error) {
	w, err := sim.NewWorld(sim.Config{Seed: join.Seed}, catalog, logging.NopPublisher())
	if err != nil {
		return nil, err
	}
	local, err := w.SpawnPlayer(join.Character)
	if err != nil {
		return nil, err
	}
	c := &Client{
		shadow:  w,
		pred:    sim.NewPredictionPipeline(),
		local:   local,
		localID: join.ID,
	}
	for _, rec := range join.State.Players {
		if rec.ID == join.ID {
			c.setAuthoritative(rec)
			break
		}
	}
	return c, nil
}

// LocalID is the server-side entity ID of the predicted player.
func (c *Client) LocalID() uint32 { return c.localID }

// Shadow exposes the prediction world for rendering reads.
func (c *Client) Shadow() *sim.World { return c.shadow }

// Pending reports the number of unacknowledged inputs.
func (c *Client) Pending() int { return len(c.pending) }

// Disconnected reports whether the session has been torn down.
func (c *Client) Disconnected() bool { return c.disconnected }

// CaptureInput stamps an input with the next sequence number, buffers it for
// reconciliation, and immediately advances the shadow world one predicted
// tick. The stamped input is returned for transmission.
func (c *Client) CaptureInput(in sim.InputState) sim.InputState {
	if c.disconnected {
		return in
	}
	c.nextSeq++
	in.Sequence = c.nextSeq
	if len(c.pending) >= maxPendingInputs {
		copy(c.pending, c.pending[1:])
		c.pending = c.pending[:len(c.pending)-1]
	}
	c.pending = append(c.pending, in)

	c.shadow.SetInput(c.local, in)
	c.pred.Step(c.shadow, sim.TickSeconds)
	return in
}

// ApplySnapshot reconciles the shadow world against an authoritative state
// message: remote entities feed the interpolator, and the local player is
// reset to the server's values and re-predicted through every input the
// server has not yet applied. The residual between the old and new
// predictions feeds the decaying visual offset.
func (c *Client) ApplySnapshot(msg proto.StateMessage) {
	if c.disconnected {
		return
	}
	c.interp.Push(msg.State, float64(msg.ServerTime))

	var local *sim.PlayerRecord
	for i := range msg.State.Players {
		if msg.State.Players[i].ID == c.localID {
			local = &msg.State.Players[i]
			break
		}
	}
	if local == nil {
		return
	}

	pos := c.shadow.Positions.Get(c.local)
	if pos == nil {
		return
	}
	preX, preY := pos.X, pos.Y

	c.setAuthoritative(*local)
	c.dropAcked(msg.Ack)
	for _, in := range c.pending {
		c.shadow.SetInput(c.local, in)
		c.pred.Step(c.shadow, sim.TickSeconds)
	}

	c.offX += preX - pos.X
	c.offY += preY - pos.Y
	if math.Hypot(c.offX, c.offY) > hardSnapDistance {
		c.offX, c.offY = 0, 0
	}
}

// setAuthoritative overwrites the local player with server values and strips
// the roll state the snapshot does not carry.
func (c *Client) setAuthoritative(rec sim.PlayerRecord) {
	if pos := c.shadow.Positions.Get(c.local); pos != nil {
		pos.X, pos.Y = rec.X, rec.Y
		pos.PrevX, pos.PrevY = rec.X, rec.Y
	}
	if vel := c.shadow.Velocities.Get(c.local); vel != nil {
		vel.X, vel.Y = rec.VX, rec.VY
	}
	if h := c.shadow.Healths.Get(c.local); h != nil {
		h.Current = rec.Health
	}
	if p := c.shadow.Players.Get(c.local); p != nil {
		p.Dead = rec.Dead
		p.Gold = rec.Gold
	}
	c.shadow.Rolls.Remove(c.local)
}

func (c *Client) dropAcked(ack uint64) {
	kept := c.pending[:0]
	for _, in := range c.pending {
		if in.Sequence > ack {
			kept = append(kept, in)
		}
	}
	c.pending = kept
}

// ObserveHeartbeat folds a heartbeat echo into the clock estimate.
// receivedAt is the local receive stamp in milliseconds.
func (c *Client) ObserveHeartbeat(hb proto.HeartbeatMessage, receivedAt int64) {
	c.clock.Observe(hb.ClientTime, hb.ServerTime, receivedAt)
}

// Clock exposes the converging clock-offset estimate.
func (c *Client) Clock() *ClockSync { return &c.clock }

// Interpolator exposes the remote-entity interpolation buffer.
func (c *Client) Interpolator() *Interpolator { return &c.interp }

// RenderAlpha derives the remote interpolation factor for a local render
// stamp, holding remote entities slightly behind the estimated server clock.
func (c *Client) RenderAlpha(localMillis int64) float64 {
	return c.interp.Alpha(c.clock.ServerNow(localMillis) - interpDelayMillis)
}

// RenderPosition is the predicted position plus the smoothing offset. The
// offset never feeds back into the logical position.
func (c *Client) RenderPosition() (float64, float64) {
	pos := c.shadow.Positions.Get(c.local)
	if pos == nil {
		return 0, 0
	}
	return pos.X + c.offX, pos.Y + c.offY
}

// PredictedPosition is the logical (offset-free) predicted position.
func (c *Client) PredictedPosition() (float64, float64) {
	pos := c.shadow.Positions.Get(c.local)
	if pos == nil {
		return 0, 0
	}
	return pos.X, pos.Y
}

// VisualOffset reports the current smoothing offset.
func (c *Client) VisualOffset() (float64, float64) { return c.offX, c.offY }

// DecayOffset shrinks the smoothing offset toward zero for one render frame.
func (c *Client) DecayOffset(frameDt float64) {
	if frameDt <= 0 {
		return
	}
	f := math.Exp(-offsetDecayRate * frameDt)
	c.offX *= f
	c.offY *= f
}

// HandleDisconnect aborts prediction and discards buffered inputs. The
// presentation layer reads Disconnected to decide what to show.
func (c *Client) HandleDisconnect() {
	c.disconnected = true
	c.pending = c.pending[:0]
}
