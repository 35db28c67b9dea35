package micro

import (
	"github.com/weiihann/parbench/workload"
)

// CPUConfig sizes the CPU micro benchmarks.
type CPUConfig struct {
	IntegerIterations int
	MatrixSmall       int
	MatrixMedium      int
	PrimeLimit        int
	Seed              int64
}

// Keys of the CPU measurements.
const (
	KeyIntegerOps   = "integer_ops"
	KeyMatrixSmall  = "floating_point_ops_small"
	KeyMatrixMedium = "floating_point_ops_medium"
	KeyPrimes       = "prime_calculation"
)

// RunCPU runs the integer, matrix and prime benchmarks in that order.
func RunCPU(cfg CPUConfig) Result {
	gen := workload.NewGenerator(cfg.Seed)

	var r Result
	r.add(KeyIntegerOps, IntegerOps(cfg.IntegerIterations))
	r.add(KeyMatrixSmall, MatrixMultiply(gen, cfg.MatrixSmall))
	r.add(KeyMatrixMedium, MatrixMultiply(gen, cfg.MatrixMedium))
	r.add(KeyPrimes, PrimeCalculation(cfg.PrimeLimit))

	return r
}

// sink defeats dead-code elimination of benchmark loops.
var sink int

// IntegerOps times a loop of integer add, subtract, multiply and divide.
func IntegerOps(iterations int) Measurement {
	var result int

	elapsed := measure(func() {
		for i := 0; i < iterations; i++ {
			result += i * 2
			result -= i / 3
			result *= 2
			result /= 4
		}
	})

	sink = result

	return Measurement{
		Operation:   "integer_arithmetic",
		Parameter:   "iterations",
		Value:       iterations,
		TimeSeconds: elapsed,
		Rate:        float64(iterations) / elapsed,
		RateUnit:    "ops/sec",
	}
}

// MatrixMultiply multiplies two generated n×n matrices and reports
// 2n³ floating point operations per second.
func MatrixMultiply(gen *workload.Generator, n int) Measurement {
	a := gen.Matrix(n)
	b := gen.Matrix(n)

	var c [][]float64

	elapsed := measure(func() {
		c = multiply(a, b)
	})

	if len(c) > 0 {
		sink = int(c[0][0])
	}

	ops := 2 * float64(n) * float64(n) * float64(n)

	return Measurement{
		Operation:   "matrix_multiplication",
		Parameter:   "matrix_size",
		Value:       n,
		TimeSeconds: elapsed,
		Rate:        ops / elapsed,
		RateUnit:    "FLOPS",
	}
}

func multiply(a, b [][]float64) [][]float64 {
	n := len(a)
	out := make([][]float64, n)

	for i := range out {
		out[i] = make([]float64, n)
		for k := 0; k < n; k++ {
			aik := a[i][k]
			for j := 0; j < n; j++ {
				out[i][j] += aik * b[k][j]
			}
		}
	}

	return out
}

// PrimeCalculation counts primes below limit on one goroutine.
func PrimeCalculation(limit int) Measurement {
	var found int

	elapsed := measure(func() {
		found = workload.Primes{}.Evaluate(limit).Count
	})

	return Measurement{
		Operation:   "prime_calculation",
		Parameter:   "limit",
		Value:       limit,
		TimeSeconds: elapsed,
		Rate:        float64(limit) / elapsed,
		RateUnit:    "numbers/sec",
		PrimesFound: found,
	}
}
