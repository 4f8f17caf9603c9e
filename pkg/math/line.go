package math

// Line is a segment from Start to End.
type Line struct {
	Start, End Vec3
}

// Direction returns End - Start.
func (l Line) Direction() Vec3 {
	return l.End.Sub(l.Start)
}

// ClosestPoint returns the point of the segment closest to p.
func (l Line) ClosestPoint(p Vec3) Vec3 {
	delta := l.End.Sub(l.Start)
	den := delta.LengthSquared()
	if den == 0 {
		return l.Start
	}
	u := p.Sub(l.Start).Dot(delta) / den
	switch {
	case u < 0:
		return l.Start
	case u > 1:
		return l.End
	}
	return l.Start.Add(delta.Scale(u))
}
