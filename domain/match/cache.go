package match

// lazy is a value that is either not yet computed or computed exactly once.
type lazy[T any] struct {
	v  T
	ok bool
}

func (l *lazy[T]) get() (T, bool) { return l.v, l.ok }

// set stores v unless a value is already present.
func (l *lazy[T]) set(v T) {
	if !l.ok {
		l.v, l.ok = v, true
	}
}

type role int

const (
	roleImage role = iota
	roleTemplate
)

type aggregate struct {
	sum, sumSq float64
	count      int
}

func (a aggregate) add(b aggregate) aggregate {
	return aggregate{a.sum + b.sum, a.sumSq + b.sumSq, a.count + b.count}
}

// Cache holds the derived statistics of one operand for one match call.
// Every field is filled on first use and never changes afterwards.
type Cache struct {
	acc  accessor
	role role
	w, h int

	agg        lazy[aggregate]
	grid       lazy[[]float64]
	mask       lazy[[]bool]
	integral   lazy[[]float64]
	integralSq lazy[[]float64]
	edge       lazy[float64]
}

// NewImageCache prepares statistics for an image operand. Alpha is ignored
// and integral images are built.
func NewImageCache(op Operand, ch Channel) *Cache {
	return newCache(op, ch, roleImage)
}

// NewTemplateCache prepares statistics for a template operand. Pixels with
// alpha 0 are excluded from every sum.
func NewTemplateCache(op Operand, ch Channel) *Cache {
	return newCache(op, ch, roleTemplate)
}

func newCache(op Operand, ch Channel, r role) *Cache {
	return &Cache{acc: newAccessor(op, ch), role: r, w: op.Width(), h: op.Height()}
}

func (c *Cache) masked() bool { return c.role == roleTemplate && c.acc.alpha }

// Seed pre-populates the scalar aggregates. A later scan only fills the grid.
func (c *Cache) Seed(sum, sumSq float64, count int) {
	c.agg.set(aggregate{sum: sum, sumSq: sumSq, count: count})
}

// ensure fills the grid, the aggregates and (for images) the integral images.
// workers <= 1 runs on the calling goroutine.
func (c *Cache) ensure(workers int) {
	if _, ok := c.grid.get(); !ok {
		_, seeded := c.agg.get()
		grid := make([]float64, c.w*c.h)
		var mask []bool
		if c.masked() {
			mask = make([]bool, c.w*c.h)
		}
		var total aggregate
		if workers <= 1 {
			total = c.scanRows(0, c.h, grid, mask, !seeded)
		} else {
			for _, part := range parallelMap(c.h, workers, func(lo, hi int) aggregate {
				return c.scanRows(lo, hi, grid, mask, !seeded)
			}) {
				total = total.add(part)
			}
		}
		c.grid.set(grid)
		if mask != nil {
			c.mask.set(mask)
		}
		c.agg.set(total)
	}
	if c.role == roleImage {
		if _, ok := c.integral.get(); !ok {
			c.buildIntegrals(workers)
		}
	}
}

func (c *Cache) scanRows(lo, hi int, grid []float64, mask []bool, accumulate bool) aggregate {
	var a aggregate
	cur := c.acc.cursor()
	for y := lo; y < hi; y++ {
		cur.Move(0, y)
		row := y * c.w
		for x := 0; x < c.w; x++ {
			if x > 0 {
				cur.MoveNextX()
			}
			v := float64(c.acc.value(cur))
			grid[row+x] = v
			if mask != nil {
				if cur.A() == 0 {
					continue
				}
				mask[row+x] = true
			}
			if accumulate {
				a.sum += v
				a.sumSq += v * v
				a.count++
			}
		}
	}
	return a
}

// buildIntegrals computes (H+1)x(W+1) summed-area tables for values and
// squared values. Row prefixes first, then a running sum down each column.
func (c *Cache) buildIntegrals(workers int) {
	grid := c.grid.v
	stride := c.w + 1
	in := make([]float64, stride*(c.h+1))
	sq := make([]float64, stride*(c.h+1))
	rows := func(lo, hi int) {
		for y := lo; y < hi; y++ {
			var s, s2 float64
			src := grid[y*c.w : (y+1)*c.w]
			dst := (y + 1) * stride
			for x, v := range src {
				s += v
				s2 += v * v
				in[dst+x+1] = s
				sq[dst+x+1] = s2
			}
		}
	}
	cols := func(lo, hi int) {
		for x := lo + 1; x <= hi; x++ {
			for y := 2; y <= c.h; y++ {
				in[y*stride+x] += in[(y-1)*stride+x]
				sq[y*stride+x] += sq[(y-1)*stride+x]
			}
		}
	}
	if workers <= 1 {
		rows(0, c.h)
		cols(0, c.w)
	} else {
		parallelFor(c.h, workers, rows)
		parallelFor(c.w, workers, cols)
	}
	c.integral.set(in)
	c.integralSq.set(sq)
}

func regionSum(table []float64, stride, x, y, w, h int) float64 {
	return table[(y+h)*stride+x+w] - table[y*stride+x+w] - table[(y+h)*stride+x] + table[y*stride+x]
}

// RegionSum is the sum of values in the w x h window at (x, y). Image caches only.
func (c *Cache) RegionSum(x, y, w, h int) float64 {
	c.ensure(1)
	return regionSum(c.integral.v, c.w+1, x, y, w, h)
}

// RegionSumSq is the sum of squared values in the w x h window at (x, y).
func (c *Cache) RegionSumSq(x, y, w, h int) float64 {
	c.ensure(1)
	return regionSum(c.integralSq.v, c.w+1, x, y, w, h)
}

func (c *Cache) Count() int {
	c.ensure(1)
	return c.agg.v.count
}

func (c *Cache) Mean() float64 {
	c.ensure(1)
	return mean(c.agg.v.sum, c.agg.v.count)
}

// Variance is the unnormalised sum of squared deviations.
func (c *Cache) Variance() float64 {
	c.ensure(1)
	return variance(c.agg.v.sum, c.agg.v.sumSq, c.agg.v.count)
}

// EdgeEnergy sums (right-left)^2 + (down-up)^2 over interior pixels.
func (c *Cache) EdgeEnergy() float64 {
	return c.edgeEnergy(1)
}

func (c *Cache) edgeEnergy(workers int) float64 {
	c.ensure(workers)
	if e, ok := c.edge.get(); ok {
		return e
	}
	var e float64
	if workers <= 1 || c.h < 3 {
		e = edgeEnergy(c.grid.v, c.w, 0, 0, c.w, c.h)
	} else {
		for _, part := range parallelMap(c.h-2, workers, func(lo, hi int) float64 {
			return edgeRows(c.grid.v, c.w, 0, c.w, lo+1, hi+1)
		}) {
			e += part
		}
	}
	c.edge.set(e)
	return e
}

// edgeEnergy over the interior of the w x h window at (x0, y0) of a grid with
// the given row stride.
func edgeEnergy(grid []float64, stride, x0, y0, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	return edgeRows(grid, stride, x0, w, y0+1, y0+h-1)
}

func edgeRows(grid []float64, stride, x0, w, y0, y1 int) float64 {
	if w < 3 {
		return 0
	}
	var e float64
	for y := y0; y < y1; y++ {
		row := y * stride
		for x := x0 + 1; x < x0+w-1; x++ {
			dx := grid[row+x+1] - grid[row+x-1]
			dy := grid[row+stride+x] - grid[row-stride+x]
			e += dx*dx + dy*dy
		}
	}
	return e
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func variance(sum, sumSq float64, n int) float64 {
	m := mean(sum, n)
	return sumSq - m*m*float64(n)
}
