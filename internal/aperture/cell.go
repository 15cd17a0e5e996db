package aperture

// cell caches one computed value together with the table version it was
// derived from. A nil value is a valid cached result.
type cell[T any] struct {
	val     *T
	version uint64
	filled  bool
}

func (c *cell[T]) fresh(version uint64) bool {
	return c.filled && c.version == version
}

func (c *cell[T]) store(v *T, version uint64) {
	c.val = v
	c.version = version
	c.filled = true
}

func (c *cell[T]) reset() {
	*c = cell[T]{}
}
