package blend

// rgb is a color triplet with channels in [0, 1].
type rgb struct{ r, g, b float64 }

// lum returns the BT.601 luminance used by the non-separable modes.
func lum(c rgb) float64 {
	return 0.3*c.r + 0.59*c.g + 0.11*c.b
}

func sat(c rgb) float64 {
	return max(c.r, c.g, c.b) - min(c.r, c.g, c.b)
}

// clipColor pulls out-of-range channels back toward the luminance.
func clipColor(c rgb) rgb {
	l := lum(c)
	n := min(c.r, c.g, c.b)
	x := max(c.r, c.g, c.b)
	if n < 0 && l-n != 0 {
		c.r = l + (c.r-l)*l/(l-n)
		c.g = l + (c.g-l)*l/(l-n)
		c.b = l + (c.b-l)*l/(l-n)
	}
	if x > 1 && x-l != 0 {
		c.r = l + (c.r-l)*(1-l)/(x-l)
		c.g = l + (c.g-l)*(1-l)/(x-l)
		c.b = l + (c.b-l)*(1-l)/(x-l)
	}
	return c
}

func setLum(c rgb, l float64) rgb {
	d := l - lum(c)
	return clipColor(rgb{c.r + d, c.g + d, c.b + d})
}

// setSat rescales the channels so max-min equals s while keeping their order.
func setSat(c rgb, s float64) rgb {
	ch := [3]*float64{&c.r, &c.g, &c.b}
	// Sort pointers so ch[0] is min and ch[2] is max.
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	if *ch[1] > *ch[2] {
		ch[1], ch[2] = ch[2], ch[1]
	}
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	lo, mid, hi := ch[0], ch[1], ch[2]
	if *hi > *lo {
		*mid = (*mid - *lo) * s / (*hi - *lo)
		*hi = s
	} else {
		*mid, *hi = 0, 0
	}
	*lo = 0
	return c
}

func nonSeparable(m Mode, cb, cs rgb) rgb {
	switch m {
	case Hue:
		return setLum(setSat(cs, sat(cb)), lum(cb))
	case Saturation:
		return setLum(setSat(cb, sat(cs)), lum(cb))
	case Color:
		return setLum(cs, lum(cb))
	case Luminosity:
		return setLum(cb, lum(cs))
	default:
		return cs
	}
}
