package baselines

import (
	"fmt"
	"testing"
	"time"
)

func allBaselines() []Estimator {
	return []Estimator{
		NewSS(1024),
		NewSWAMP(1 << 20),
		NewBMC(10 * time.Minute),
		NewMBF(4 << 20),
		NewWindowedRecency(1024, 10*time.Minute),
		NewAdaptive(1024),
		NewNaive(10 * time.Minute),
		NewTinyLFUBenchmark(1024),
	}
}

func TestBaselinesReportNonNegativeWSS(t *testing.T) {
	for _, b := range allBaselines() {
		for i := 0; i < 200; i++ {
			key := []byte(fmt.Sprintf("key-%d", i%64))
			b.Put(key, uint64(100+i%50))
		}
		if got := b.WSS(); got == 0 {
			t.Fatalf("%s: expected nonzero WSS after puts, got 0", b.Name())
		}
	}
}

func BenchmarkBaselines(b *testing.B) {
	for _, base := range allBaselines() {
		base := base
		b.Run(base.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				key := []byte(fmt.Sprintf("key-%d", i%1000))
				base.Put(key, uint64(64+i%512))
			}
		})
	}
}
