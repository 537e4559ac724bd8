package encoding

// Serializable is a value with a fixed binary representation.
type Serializable interface {
	Encode() []byte
	Decode(data []byte) error
}
