package flowstats

import (
	"gonum.org/v1/gonum/stat"
)

// Summary describes a sampled series.
type Summary struct {
	Samples    int
	TotalBytes uint64

	// Throughput of each interval between consecutive samples, in bit/s.
	MeanThroughput   float64
	StdDevThroughput float64
	PeakThroughput   float64
}

// Summarize computes the throughput statistics of a series. A series with
// fewer than two samples has no intervals and reports zero throughput.
func Summarize(samples []Sample) Summary {
	s := Summary{Samples: len(samples)}
	if len(samples) == 0 {
		return s
	}

	s.TotalBytes = samples[len(samples)-1].TotalBytes

	if len(samples) < 2 {
		return s
	}

	rates := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time - samples[i-1].Time
		if dt <= 0 {
			continue
		}

		bytes := float64(samples[i].TotalBytes) - float64(samples[i-1].TotalBytes)
		rate := 8 * bytes / dt
		rates = append(rates, rate)

		if rate > s.PeakThroughput {
			s.PeakThroughput = rate
		}
	}

	switch len(rates) {
	case 0:
		return s
	case 1:
		s.MeanThroughput = rates[0]
		return s
	}

	s.MeanThroughput, s.StdDevThroughput = stat.MeanStdDev(rates, nil)

	return s
}
