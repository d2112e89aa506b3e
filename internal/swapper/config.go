package swapper

// maxStripePower caps the channel stripe count at 2^6 = 64, matching the
// construction parameter bound in spec §6.
const maxStripePower = 6

// defaultRetryBudget is the number of reopen attempts a read or write will
// make before giving up with IoInterrupted (spec §4.E, §5).
const defaultRetryBudget = 42

// defaultStripeShift is the number of low-order page-id bits consumed
// before rotating to the next stripe: 16 consecutive pages per stripe.
const defaultStripeShift = 4

// Config carries the construction parameters and feature-flag knobs for a
// Swapper (spec §6). Zero values resolve to the documented defaults.
type Config struct {
	// PageSize is the fixed page size in bytes. Must be a positive power
	// of two; Open rejects zero with ConfigurationError but does not check
	// that the value is a power of two.
	PageSize uint32

	// NoChannelStriping forces K = 1 regardless of platform defaults.
	NoChannelStriping bool

	// UseDirectIO makes Open check the direct-I/O requirements: only Linux
	// hosts support it, and construction fails with ConfigurationError
	// elsewhere or if PageSize is not a multiple of the file's block size.
	// Open does not change how handles are opened; direct I/O itself comes
	// from the FileSystem passed in (NewDirectIOFileSystem).
	UseDirectIO bool

	// ChannelStripePower, if non-zero, overrides the platform default for
	// log2(K). Values are clamped to [0, maxStripePower].
	ChannelStripePower int

	// ChannelStripeShift overrides defaultStripeShift when non-zero.
	ChannelStripeShift uint

	// PrintReflectionExceptions enables best-effort diagnostic logging of
	// reopen attempts and lock failures. It never affects correctness.
	PrintReflectionExceptions bool

	// OnEvict is the eviction callback (spec §4.H). It may be nil.
	OnEvict func(pageID int64)

	// RetryBudget overrides defaultRetryBudget when non-zero. Exists so
	// tests can shrink the budget instead of waiting through 42 retries.
	RetryBudget int
}

func (c Config) stripePower() int {
	p := c.ChannelStripePower
	if p == 0 {
		p = defaultChannelStripePower()
	}
	if c.NoChannelStriping {
		p = 0
	}
	if p < 0 {
		p = 0
	}
	if p > maxStripePower {
		p = maxStripePower
	}
	return p
}

func (c Config) stripeShift() uint {
	if c.ChannelStripeShift != 0 {
		return c.ChannelStripeShift
	}
	return defaultStripeShift
}

func (c Config) retryBudget() int {
	if c.RetryBudget > 0 {
		return c.RetryBudget
	}
	return defaultRetryBudget
}
