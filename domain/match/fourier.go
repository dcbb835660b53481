package match

import "math"

// fourier scores windows from frequency-domain correlations computed once for
// the whole image. The template is flipped and centred so that the value at
// (y+th-1, x+tw-1) of the inverse transform is the centred cross term of the
// window at (x, y).
type fourier struct {
	img    *Cache
	masked bool
	fw     int
	tw, th int
	count  int
	tvar   float64

	num []float64
	// masked only: windowed sums of I and I^2 under the mask.
	sum, sumSq []float64
}

func newFourier(img, tmpl *Cache, masked bool, workers int) (*fourier, error) {
	img.ensure(workers)
	tmpl.ensure(workers)
	agg := tmpl.agg.v
	fw, fh := NextPow2(img.w+tmpl.w), NextPow2(img.h+tmpl.h)
	f := &fourier{
		img:    img,
		masked: masked,
		fw:     fw,
		tw:     tmpl.w,
		th:     tmpl.h,
		count:  agg.count,
		tvar:   variance(agg.sum, agg.sumSq, agg.count),
	}
	tmean := mean(agg.sum, agg.count)
	var mask []bool
	if masked {
		mask, _ = tmpl.mask.get()
	}

	ip := newPlane(fw, fh)
	for y := 0; y < img.h; y++ {
		copy(ip.re[y*fw:y*fw+img.w], img.grid.v[y*img.w:(y+1)*img.w])
	}
	tp := newPlane(fw, fh)
	var mp *plane
	if masked {
		mp = newPlane(fw, fh)
	}
	for j := 0; j < tmpl.h; j++ {
		for i := 0; i < tmpl.w; i++ {
			k := j*tmpl.w + i
			if mask != nil && !mask[k] {
				continue
			}
			dst := (tmpl.h-1-j)*fw + tmpl.w - 1 - i
			tp.re[dst] = tmpl.grid.v[k] - tmean
			if mp != nil {
				mp.re[dst] = 1
			}
		}
	}

	var sq *plane
	if masked {
		sq = newPlane(fw, fh)
		for i, v := range ip.re {
			sq.re[i] = v * v
		}
	}

	for _, p := range []*plane{ip, tp, mp, sq} {
		if p == nil {
			continue
		}
		if err := transform(p, false, workers); err != nil {
			return nil, err
		}
	}

	// tp is no longer needed after the product, so it holds C1.
	mulInto(tp, ip, tp)
	if err := transform(tp, true, workers); err != nil {
		return nil, err
	}
	f.num = tp.re

	if masked {
		mulInto(ip, ip, mp)
		mulInto(sq, sq, mp)
		if err := transform(ip, true, workers); err != nil {
			return nil, err
		}
		if err := transform(sq, true, workers); err != nil {
			return nil, err
		}
		f.sum, f.sumSq = ip.re, sq.re
	}
	return f, nil
}

func (f *fourier) score(x, y int) float64 {
	idx := (y+f.th-1)*f.fw + x + f.tw - 1
	var sum, sumSq float64
	if f.masked {
		// Both are sums of integers; rounding removes transform noise so flat
		// windows see an exact zero variance.
		sum, sumSq = math.Round(f.sum[idx]), math.Round(f.sumSq[idx])
	} else {
		stride := f.img.w + 1
		sum = regionSum(f.img.integral.v, stride, x, y, f.tw, f.th)
		sumSq = regionSum(f.img.integralSq.v, stride, x, y, f.tw, f.th)
	}
	return ncc(f.num[idx], variance(sum, sumSq, f.count), f.tvar)
}
