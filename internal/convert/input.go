package convert

// Input is a consuming cursor over the compressed stream bytes. The whole
// stream is resident before conversion starts; decode stages consume from
// the front and consumed bytes are permanently gone.
type Input struct {
	rest []byte
}

// NewInput wraps the full compressed stream.
func NewInput(data []byte) *Input {
	return &Input{rest: data}
}

// Len returns the number of unconsumed bytes.
func (in *Input) Len() int {
	return len(in.rest)
}

// Empty reports whether no unconsumed bytes remain.
func (in *Input) Empty() bool {
	return len(in.rest) == 0
}

// Bytes returns the unconsumed remainder. Callers must not retain the
// slice across a Consume.
func (in *Input) Bytes() []byte {
	return in.rest
}

// Consume drops n bytes from the front. n beyond the remainder drains
// the cursor.
func (in *Input) Consume(n int) {
	if n < 0 {
		return
	}
	if n >= len(in.rest) {
		in.rest = nil
		return
	}
	in.rest = in.rest[n:]
}
