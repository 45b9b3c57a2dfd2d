package metrics

import "testing"

// BenchmarkCollector_LineReceived measures the per-line overhead paid by
// the connection reader.
func BenchmarkCollector_LineReceived(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.LineReceived(128)
	}
}

// BenchmarkCollector_Snapshot measures the cost of /stats.
func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.Connected()
	c.LineSent(64)
	c.RecordError("test")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}
