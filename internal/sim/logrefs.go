package sim

import (
	"strconv"

	"dust-and-lead/server/internal/ecs"
	"dust-and-lead/server/logging"
)

func (w *World) entityRef(e ecs.Entity) logging.EntityRef {
	kind := logging.EntityKindUnknown
	switch {
	case w.Players.Has(e):
		kind = logging.EntityKindPlayer
	case w.Enemies.Has(e):
		kind = logging.EntityKindEnemy
	case w.Bullets.Has(e):
		kind = logging.EntityKindBullet
	}
	return logging.EntityRef{ID: strconv.FormatUint(uint64(e.ID), 10), Kind: kind}
}
