package micro

import (
	"fmt"

	"github.com/weiihann/parbench/workload"
)

// MemoryConfig sizes the memory micro benchmarks.
type MemoryConfig struct {
	SizesMB []int
	Seed    int64
}

const (
	bytesPerMB      = 1 << 20
	float64Bytes    = 8
	maxRandomReads  = 10000
	rateUnitMBPerS  = "MB/sec"
	parameterSizeMB = "size_mb"
)

// RunMemory runs sequential access, random access and allocation for
// every size, keyed "sequential_access_{n}mb" and so on.
func RunMemory(cfg MemoryConfig) Result {
	gen := workload.NewGenerator(cfg.Seed)

	var r Result
	for _, size := range cfg.SizesMB {
		r.add(fmt.Sprintf("sequential_access_%dmb", size), SequentialAccess(gen, size))
		r.add(fmt.Sprintf("random_access_%dmb", size), RandomAccess(gen, size))
		r.add(fmt.Sprintf("allocation_%dmb", size), Allocation(size))
	}

	return r
}

func elements(sizeMB int) int {
	return max(sizeMB, 0) * bytesPerMB / float64Bytes
}

// SequentialAccess sums a sizeMB buffer front to back.
func SequentialAccess(gen *workload.Generator, sizeMB int) Measurement {
	data := gen.Numbers(elements(sizeMB))

	var total float64

	elapsed := measure(func() {
		for _, v := range data {
			total += v
		}
	})

	sink = int(total)

	return memoryMeasurement("sequential_access", sizeMB, elapsed)
}

// RandomAccess reads up to 10000 random elements of a sizeMB buffer.
// Rate is sizeMB over the elapsed time, not bytes touched.
func RandomAccess(gen *workload.Generator, sizeMB int) Measurement {
	data := gen.Numbers(elements(sizeMB))
	reads := min(maxRandomReads, len(data)/2)

	indices := make([]int, reads)
	for i := range indices {
		indices[i] = gen.Intn(len(data))
	}

	var total float64

	elapsed := measure(func() {
		for _, idx := range indices {
			total += data[idx]
		}
	})

	sink = int(total)

	return memoryMeasurement("random_access", sizeMB, elapsed)
}

// Allocation times allocating and zeroing a sizeMB slice.
func Allocation(sizeMB int) Measurement {
	var data []int64

	elapsed := measure(func() {
		data = make([]int64, elements(sizeMB))
	})

	sink = len(data)

	return memoryMeasurement("memory_allocation", sizeMB, elapsed)
}

func memoryMeasurement(op string, sizeMB int, elapsed float64) Measurement {
	return Measurement{
		Operation:   op,
		Parameter:   parameterSizeMB,
		Value:       sizeMB,
		TimeSeconds: elapsed,
		Rate:        float64(sizeMB) / elapsed,
		RateUnit:    rateUnitMBPerS,
	}
}
