package utils

// -----------------------------------------------------------------------------
// Ring is a fixed-size circular buffer. Appending beyond capacity evicts the
// oldest element. True ring buffer - no resizing on append!
// -----------------------------------------------------------------------------

type Ring[T any] struct {
	data     []T
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRing creates a new buffer with fixed capacity
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &Ring[T]{
		data:     make([]T, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds one element, evicting the oldest when full
func (rb *Ring[T]) Append(v T) {
	rb.data[rb.index] = v
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// Values returns all data in insertion order (oldest to newest)
func (rb *Ring[T]) Values() []T {
	result := make([]T, rb.size)
	if rb.size == 0 {
		return result
	}

	// Calculate start index (oldest element)
	var startIdx int
	if rb.size == rb.capacity {
		// Buffer is full, oldest is at current index (wrap-around)
		startIdx = rb.index
	} else {
		startIdx = 0
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Last returns the most recently appended element.
func (rb *Ring[T]) Last() (T, bool) {
	var zero T
	if rb.size == 0 {
		return zero, false
	}
	return rb.data[(rb.index-1+rb.capacity)%rb.capacity], true
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *Ring[T]) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *Ring[T]) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *Ring[T]) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *Ring[T]) Clear() {
	rb.index = 0
	rb.size = 0
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer.
// If newCapacity < size, oldest data is dropped.
func (rb *Ring[T]) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == rb.capacity {
		return
	}

	newData := make([]T, newCapacity)

	count := rb.size
	if count > newCapacity {
		count = newCapacity
	}

	// Copy the newest 'count' elements from the old buffer
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		newData[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	rb.data = newData
	rb.capacity = newCapacity
	rb.size = count
	rb.index = count % newCapacity
}
