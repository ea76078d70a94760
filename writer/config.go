package writer

import "github.com/webertob/bcsv-go/internal/options"

// DefaultPacketSize is the row count at which a packet is flushed to disk
// when the caller never overrides it with WithPacketSize.
const DefaultPacketSize = 1024

// config holds a Writer's construction-time settings, built up by applying
// Option values in Open.
type config struct {
	packetSize       uint32
	compressionLevel int
	zeroOrderHold    bool
	deltaEncoding    bool
}

func defaultConfig() config {
	return config{packetSize: DefaultPacketSize}
}

// Option configures a Writer at Open time.
type Option = options.Option[*config]

// WithPacketSize sets the number of rows buffered per packet before an
// automatic flush. n <= 0 is ignored.
func WithPacketSize(n uint32) Option {
	return options.NoError[*config](func(c *config) {
		if n > 0 {
			c.packetSize = n
		}
	})
}

// WithCompressionLevel sets the LZ4 envelope level, clamped to [0, 12] by
// compress.NewEnvelope. 0 disables compression.
func WithCompressionLevel(level int) Option {
	return options.NoError[*config](func(c *config) { c.compressionLevel = level })
}

// WithZeroOrderHold selects the ZOH001 row codec (ignored if
// WithDeltaEncoding is also given; delta takes priority).
func WithZeroOrderHold() Option {
	return options.NoError[*config](func(c *config) { c.zeroOrderHold = true })
}

// WithDeltaEncoding selects the DELTA002 row codec.
func WithDeltaEncoding() Option {
	return options.NoError[*config](func(c *config) { c.deltaEncoding = true })
}
