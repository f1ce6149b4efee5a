package mathx

// MapRange maps x in [inMin,inMax] to [outMin,outMax].
// Clamps to the out range if input is outside.
func MapRange(x, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	if x <= inMin {
		return outMin
	}
	if x >= inMax {
		return outMax
	}
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}
