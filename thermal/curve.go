package thermal

// PowerCurve converts GPU temperature to cooler power, a dimensionless
// demand in [MinPower, MaxPower] consumed by the fan manager.
//
// The shape is a two-segment ramp: idle below 30C, half power reached at
// 70C, full power at 100C. The knee at 70C keeps the cooler quiet through
// normal load and saves the steep half of the range for temperatures that
// actually threaten the card.
type PowerCurve struct {
	MinPower float64
	MaxPower float64
}

// DefaultCurve spans the full power range.
var DefaultCurve = PowerCurve{MinPower: 0, MaxPower: 1}

// Power returns the cooler power demanded at the given temperature.
func (c PowerCurve) Power(temperatureC float64) float64 {
	switch {
	case temperatureC < 30:
		return c.MinPower
	case temperatureC < 70:
		return linterp(temperatureC, 30, 70, c.MinPower, c.MaxPower/2)
	case temperatureC < 100:
		return linterp(temperatureC, 70, 100, c.MaxPower/2, c.MaxPower)
	default:
		return c.MaxPower
	}
}

func linterp(x, inMin, inMax, outMin, outMax float64) float64 {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
