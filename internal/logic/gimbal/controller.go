package gimbal

// Actuator positions one axis to an absolute angle, open loop.
// *servo.Servo satisfies it.
type Actuator interface {
	MoveTo(angleDeg int) error
}

// Controller orchestrates pan/tilt positioning via two servo actuators.
// It's an intermediate layer between business logic (sweeps, scans) and
// low-level hardware. Settle times after a move are the caller's concern:
// the two axis classes have different mechanical response curves.
type Controller struct {
	pan  Actuator
	tilt Actuator
}

func NewController(pan, tilt Actuator) *Controller {
	return &Controller{
		pan:  pan,
		tilt: tilt,
	}
}

func (c *Controller) MovePan(angleDeg int) error {
	return c.pan.MoveTo(angleDeg)
}

func (c *Controller) MoveTilt(angleDeg int) error {
	return c.tilt.MoveTo(angleDeg)
}

// MoveTo performs a combined movement (sequential for now).
func (c *Controller) MoveTo(panDeg, tiltDeg int) error {
	if err := c.MovePan(panDeg); err != nil {
		return err
	}
	if err := c.MoveTilt(tiltDeg); err != nil {
		return err
	}
	return nil
}
