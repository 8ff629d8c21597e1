package cache

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit(int)                     {}
func (NoopMetrics) Write(int)                   {}
func (NoopMetrics) Evict(int, EvictReason, int) {}
func (NoopMetrics) Size(int, int)               {}

var _ Metrics = NoopMetrics{}
