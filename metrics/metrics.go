package metrics

import "time"

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFault   = "fault"
)

type CalculatorMetrics interface {
	Operation(op, outcome string)
}

type PublisherMetrics interface {
	AttemptStarted()
	Published()
	PublishFailed()
	PublishLatency(d time.Duration)
}

type Nop struct{}

func (Nop) Operation(string, string)     {}
func (Nop) AttemptStarted()              {}
func (Nop) Published()                   {}
func (Nop) PublishFailed()               {}
func (Nop) PublishLatency(time.Duration) {}
