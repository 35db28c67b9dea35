package engine

// Partition splits taskSize into workerCount chunks of taskSize/workerCount
// items each. The remainder is dropped: chunks may under-cover taskSize by
// up to workerCount-1 items.
//
// Partition returns nil when workerCount < 1. Zero-sized chunks are
// valid and evaluate to a zero count.
func Partition(taskSize, workerCount int) []int {
	if workerCount < 1 {
		return nil
	}

	chunk := max(taskSize, 0) / workerCount
	chunks := make([]int, workerCount)

	for i := range chunks {
		chunks[i] = chunk
	}

	return chunks
}

// Chunk is a contiguous sub-range [Start, Start+Size) of a task.
type Chunk struct {
	Start int
	Size  int
}

// Chunks lays the sizes from Partition out as adjacent sub-ranges
// starting at zero.
func Chunks(taskSize, workerCount int) []Chunk {
	sizes := Partition(taskSize, workerCount)
	chunks := make([]Chunk, len(sizes))

	start := 0
	for i, size := range sizes {
		chunks[i] = Chunk{Start: start, Size: size}
		start += size
	}

	return chunks
}
