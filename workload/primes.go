package workload

// PrimesName is the registry name of the prime-counting workload.
const PrimesName = "primes"

// Primes counts primes. Evaluate(size) counts the primes in [2, size).
type Primes struct{}

// Name implements Workload.
func (Primes) Name() string { return PrimesName }

// Evaluate implements Workload. Sizes <= 2 yield a zero count.
func (p Primes) Evaluate(size int) Result {
	return p.EvaluateRange(0, size)
}

// EvaluateRange implements Workload.
func (Primes) EvaluateRange(start, size int) Result {
	count := 0
	for n := max(start, 2); n < start+size; n++ {
		if IsPrime(n) {
			count++
		}
	}

	return Result{Start: start, Size: size, Count: count}
}

// IsPrime reports whether n is prime using trial division by 6k±1.
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}

	for i, step := 5, 2; i*i <= n; i, step = i+step, 6-step {
		if n%i == 0 {
			return false
		}
	}

	return true
}
