package gpio_button

import (
	"time"

	"lampcode-go/types"
)

type Params struct {
	LongPress time.Duration // held this long: long press, fired while held
	DoubleGap time.Duration // max gap between a release and the next press
	Debounce  time.Duration // level must hold this long to count
	Invert    bool          // true if pressed == low
}

func DefaultParams() Params {
	return Params{
		LongPress: 800 * time.Millisecond,
		DoubleGap: 350 * time.Millisecond,
		Debounce:  40 * time.Millisecond,
	}
}

// Classifier turns level samples into single, long and double presses.
// A single press is only reported once DoubleGap has passed without a
// second press.
type Classifier struct {
	p Params

	raw   bool
	rawAt time.Time

	pressed  bool
	downAt   time.Time
	longSent bool

	pending bool
	upAt    time.Time
}

func NewClassifier(p Params) *Classifier { return &Classifier{p: p} }

// Feed records a level sample (true = contact closed before inversion)
// and returns any event it completes.
func (c *Classifier) Feed(level bool, now time.Time) types.ButtonEvent {
	if c.p.Invert {
		level = !level
	}
	if level != c.raw {
		c.raw = level
		c.rawAt = now
	}
	return c.Poll(now)
}

// Poll advances timers without a new sample.
func (c *Classifier) Poll(now time.Time) types.ButtonEvent {
	if c.raw != c.pressed && now.Sub(c.rawAt) >= c.p.Debounce {
		c.pressed = c.raw
		if c.pressed {
			c.downAt = c.rawAt
			c.longSent = false
		} else if ev := c.released(); ev != types.ButtonNone {
			return ev
		}
	}
	switch {
	case c.pressed && !c.longSent && now.Sub(c.downAt) >= c.p.LongPress:
		c.longSent = true
		c.pending = false
		return types.ButtonLong
	case c.pending && !c.pressed && now.Sub(c.upAt) >= c.p.DoubleGap:
		c.pending = false
		return types.ButtonSingle
	}
	return types.ButtonNone
}

func (c *Classifier) released() types.ButtonEvent {
	if c.longSent {
		return types.ButtonNone
	}
	if c.pending {
		c.pending = false
		return types.ButtonDouble
	}
	c.pending = true
	c.upAt = c.rawAt
	return types.ButtonNone
}
