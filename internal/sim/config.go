package sim

const (
	// TickRate is the fixed simulation frequency shared by server and
	// prediction replay.
	TickRate = 30

	// TickSeconds is the fixed dt every system receives.
	TickSeconds = 1.0 / float64(TickRate)

	DefaultSeed = "dust-and-lead"

	defaultWidth          = 1280.0
	defaultHeight         = 960.0
	defaultCellSize       = 64.0
	defaultEntityCapacity = 1024
	defaultFodderShotCap  = 48
	defaultPickupRadius   = 28.0
	defaultSpawnMinDist   = 180.0
	defaultSpawnRingDist  = 320.0
)

// Config tunes one world instance. Zero values are filled by normalized().
type Config struct {
	Seed           string
	Width          float64
	Height         float64
	CellSize       float64
	EntityCapacity int
	FodderShotCap  int
	ObstacleCount  int
}

func (c Config) normalized() Config {
	if c.Seed == "" {
		c.Seed = DefaultSeed
	}
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.CellSize <= 0 {
		c.CellSize = defaultCellSize
	}
	if c.EntityCapacity <= 0 {
		c.EntityCapacity = defaultEntityCapacity
	}
	if c.FodderShotCap <= 0 {
		c.FodderShotCap = defaultFodderShotCap
	}
	if c.ObstacleCount < 0 {
		c.ObstacleCount = 0
	}
	return c
}
