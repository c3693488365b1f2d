package alerting

// Recorder receives counters about a generation run.
type Recorder interface {
	RuleProcessed(kind Kind)
	UEISynthesized(dir Direction)
	RearmSuppressed()
	ExpressionParseFailed()
	DuplicateEventDropped()
}

type nopRecorder struct{}

func (nopRecorder) RuleProcessed(Kind) {}
func (nopRecorder) UEISynthesized(Direction) {}
func (nopRecorder) RearmSuppressed() {}
func (nopRecorder) ExpressionParseFailed() {}
func (nopRecorder) DuplicateEventDropped() {}
