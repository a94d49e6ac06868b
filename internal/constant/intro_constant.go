package constant

// Cache key prefixes. Keys are exact-string: the query is used verbatim,
// no whitespace or case normalization.
const (
	IntroCacheGetPrefix   = "get:"
	IntroCacheQueryPrefix = "query:"
)

const IntroCreatedEventType = "INTRO_CREATED"

// Logger module names
const (
	ModuleIntro    = "intro"
	ModuleConsumer = "intro_consumer"
)
