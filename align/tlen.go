package align

// Tlen computes the signed SAM template length for a mapped pair: the
// distance between the leftmost and rightmost bases across both mates, with
// the sign assigned to the alignment whose midpoint is smaller (ties broken
// to the forward mate under FR orientation).
func Tlen(a1, a2 Alignment, orientation Orientation) (tlen1, tlen2 int) {
	beg := minU64(a1.Start(), a2.Start())
	end := maxU64(a1.End(), a2.End())
	length := int(end-beg) + 1

	mid1 := a1.Start() + a1.End()
	mid2 := a2.Start() + a2.End()

	var negative1 bool
	switch {
	case mid1 < mid2:
		negative1 = false
	case mid1 > mid2:
		negative1 = true
	default:
		// tie: forward mate keeps the positive sign under FR orientation.
		negative1 = orientation == OrientFR && a1.IsReverseComplement()
	}

	if negative1 {
		return -length, length
	}
	return length, -length
}
