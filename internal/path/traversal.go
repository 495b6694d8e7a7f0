package path

// Traversal produces successive goals for a moving entity.
type Traversal interface {
	// Goal returns the waypoint the entity is heading to.
	Goal() Waypoint
	// Advance selects the next goal. Paths may return ErrDeadEnd.
	Advance() (Waypoint, error)
}

var (
	_ Traversal = (*Path)(nil)
	_ Traversal = (*RegionWalker)(nil)
)
