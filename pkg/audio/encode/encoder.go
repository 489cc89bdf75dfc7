// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for audio encoders
package encode

// Encoder encodes captured float32 samples to wire format
type Encoder interface {
	// Encode converts samples to encoded audio data
	Encode(samples []float32) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
