package match

// spatial scores windows directly. Window sums come from the integral images
// unless the template is masked, in which case only opaque pixels count.
type spatial struct {
	img    *Cache
	masked bool
	tw, th int
	// offsets index the image grid relative to the window origin; weights are
	// the matching centred template values.
	offsets []int
	weights []float64
	count   int
	tvar    float64
}

func newSpatial(img, tmpl *Cache, masked bool, workers int) *spatial {
	img.ensure(workers)
	tmpl.ensure(workers)
	agg := tmpl.agg.v
	s := &spatial{
		img:    img,
		masked: masked,
		tw:     tmpl.w,
		th:     tmpl.h,
		count:  agg.count,
		tvar:   variance(agg.sum, agg.sumSq, agg.count),
	}
	tmean := mean(agg.sum, agg.count)
	mask, _ := tmpl.mask.get()
	for j := 0; j < tmpl.h; j++ {
		for i := 0; i < tmpl.w; i++ {
			k := j*tmpl.w + i
			if masked && mask != nil && !mask[k] {
				continue
			}
			s.offsets = append(s.offsets, j*img.w+i)
			s.weights = append(s.weights, tmpl.grid.v[k]-tmean)
		}
	}
	return s
}

func (s *spatial) score(x, y int) float64 {
	grid := s.img.grid.v
	base := y*s.img.w + x
	var num, sum, sumSq float64
	if s.masked {
		for k, off := range s.offsets {
			v := grid[base+off]
			num += v * s.weights[k]
			sum += v
			sumSq += v * v
		}
	} else {
		for k, off := range s.offsets {
			num += grid[base+off] * s.weights[k]
		}
		stride := s.img.w + 1
		sum = regionSum(s.img.integral.v, stride, x, y, s.tw, s.th)
		sumSq = regionSum(s.img.integralSq.v, stride, x, y, s.tw, s.th)
	}
	return ncc(num, variance(sum, sumSq, s.count), s.tvar)
}
