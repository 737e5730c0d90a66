package fidelity

import "math"

// Lab is a color in CIE L*a*b* space relative to the D65 white point.
type Lab struct {
	L, A, B float64
}

// OKLab is a color in the OKLab perceptual space (Ottosson, 2020).
type OKLab struct {
	L, A, B float64
}

// XYZ is a color in CIE XYZ space, scaled so that D65 white is
// (95.047, 100.0, 108.883).
type XYZ struct {
	X, Y, Z float64
}

// D65 reference white.
const (
	whiteX = 95.047
	whiteY = 100.0
	whiteZ = 108.883
)

// oklabFalloff controls how fast OKLab distance decays to 0% similarity.
// A distance of 1 (roughly black vs white) maps to well under 1%.
const oklabFalloff = 6.0

// Linearize converts one sRGB gamma-encoded component in [0,1] to linear
// light. Piecewise at 0.04045: s/12.92 below, ((s+0.055)/1.055)^2.4 above.
func Linearize(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// XYZ converts the color to CIE XYZ using the standard D65 sRGB matrix.
// Alpha is ignored.
func (c Color) XYZ() XYZ {
	r := Linearize(c.R)
	g := Linearize(c.G)
	b := Linearize(c.B)

	return XYZ{
		X: (0.4124564*r + 0.3575761*g + 0.1804375*b) * 100,
		Y: (0.2126729*r + 0.7151522*g + 0.0721750*b) * 100,
		Z: (0.0193339*r + 0.1191920*g + 0.9503041*b) * 100,
	}
}

// Lab converts the color to CIE L*a*b* via XYZ.
func (c Color) Lab() Lab {
	return c.XYZ().Lab()
}

// Lab converts XYZ to CIE L*a*b* against the D65 white point.
func (v XYZ) Lab() Lab {
	fx := labF(v.X / whiteX)
	fy := labF(v.Y / whiteY)
	fz := labF(v.Z / whiteZ)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// labF is the CIE f(t) companding function: cube root above the 0.008856
// break, linear segment below.
func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// OKLab converts the color to OKLab: linearize, LMS cone matrix, cube
// root, OKLab matrix. Black maps to (0,0,0) and white to (1,0,0).
func (c Color) OKLab() OKLab {
	r := Linearize(c.R)
	g := Linearize(c.G)
	b := Linearize(c.B)

	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	lc := math.Cbrt(l)
	mc := math.Cbrt(m)
	sc := math.Cbrt(s)

	return OKLab{
		L: 0.2104542553*lc + 0.7936177850*mc - 0.0040720468*sc,
		A: 1.9779984951*lc - 2.4285922050*mc + 0.4505937099*sc,
		B: 0.0259040371*lc + 0.7827717662*mc - 0.8086757660*sc,
	}
}

// ColorDistanceOKLab returns the Euclidean distance between two colors in
// OKLab space. Identical colors yield 0.
func ColorDistanceOKLab(a, b Color) float64 {
	oa := a.OKLab()
	ob := b.OKLab()
	dl := oa.L - ob.L
	da := oa.A - ob.A
	db := oa.B - ob.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// CIEDE2000 returns the CIE 2000 color difference between two Lab colors
// with the parametric factors kL, kC, kH all set to 1.
func CIEDE2000(a, b Lab) float64 {
	return CIEDE2000Weighted(a, b, 1, 1, 1)
}

// CIEDE2000Weighted is the full CIEDE2000 formula with explicit parametric
// factors. Raising kL reduces the weight of the lightness term. Zero-chroma
// inputs take the defined hue-angle-0 branch rather than producing NaN.
func CIEDE2000Weighted(lab1, lab2 Lab, kl, kc, kh float64) float64 {
	const pow25to7 = 6103515625.0 // 25^7

	c1 := math.Hypot(lab1.A, lab1.B)
	c2 := math.Hypot(lab2.A, lab2.B)
	cBar := (c1 + c2) / 2

	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25to7)))

	a1p := (1 + g) * lab1.A
	a2p := (1 + g) * lab2.A
	c1p := math.Hypot(a1p, lab1.B)
	c2p := math.Hypot(a2p, lab2.B)

	h1p := hueAngle(lab1.B, a1p)
	h2p := hueAngle(lab2.B, a2p)

	dLp := lab2.L - lab1.L
	dCp := c2p - c1p

	// Hue difference, special-cased when either chroma is zero.
	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp/2))

	lBarP := (lab1.L + lab2.L) / 2
	cBarP := (c1p + c2p) / 2

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarP = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarP = (h1p + h2p + 360) / 2
	default:
		hBarP = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(radians(hBarP-30)) +
		0.24*math.Cos(radians(2*hBarP)) +
		0.32*math.Cos(radians(3*hBarP+6)) -
		0.20*math.Cos(radians(4*hBarP-63))

	dTheta := 30 * math.Exp(-((hBarP-275)/25)*((hBarP-275)/25))

	cBarP7 := math.Pow(cBarP, 7)
	rc := 2 * math.Sqrt(cBarP7/(cBarP7+pow25to7))

	lTerm := (lBarP - 50) * (lBarP - 50)
	sl := 1 + 0.015*lTerm/math.Sqrt(20+lTerm)
	sc := 1 + 0.045*cBarP
	sh := 1 + 0.015*cBarP*t
	rt := -math.Sin(radians(2*dTheta)) * rc

	lRatio := dLp / (kl * sl)
	cRatio := dCp / (kc * sc)
	hRatio := dHp / (kh * sh)

	return math.Sqrt(lRatio*lRatio + cRatio*cRatio + hRatio*hRatio + rt*cRatio*hRatio)
}

// hueAngle returns atan2(b, a) in degrees in [0, 360), with the zero-chroma
// case pinned to 0 so no NaN propagates.
func hueAngle(b, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	deg := math.Atan2(b, a) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// OKLabToSimilarity maps an OKLab distance to a similarity percentage:
// 100·e^(−k·d). Distance 0 yields 100%; distance 1 is under 1%.
func OKLabToSimilarity(d float64) float64 {
	return 100 * math.Exp(-oklabFalloff*d)
}

// DeltaEToSimilarity maps a CIEDE2000 ΔE to a similarity percentage:
// 100·e^(−ΔE/50). ΔE 0 yields 100%.
func DeltaEToSimilarity(deltaE float64) float64 {
	return 100 * math.Exp(-deltaE/50)
}
