package config

// DomainConfig holds all configurable rules of an editing session
type DomainConfig struct {
	// Graph constraints
	MaxNodesPerGraph int
	MaxEdgesPerGraph int

	// Node constraints
	PlaceholderLabel string
	MaxLabelLength   int

	// Edge constraints
	AllowSelfConnections bool

	// Viewport constraints
	MinZoom  float64
	MaxZoom  float64
	ZoomStep float64

	// History constraints. Zero keeps every entry.
	MaxHistoryDepth int

	// Suggestion settings
	MaxSuggestionCandidates int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Graph constraints
		MaxNodesPerGraph: 10000,
		MaxEdgesPerGraph: 50000,

		// Node constraints
		PlaceholderLabel: "New Node",
		MaxLabelLength:   500,

		// Edge constraints
		AllowSelfConnections: false,

		// Viewport constraints
		MinZoom:  0.3,
		MaxZoom:  3.0,
		ZoomStep: 0.1,

		MaxHistoryDepth: 0,

		MaxSuggestionCandidates: 200,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxNodesPerGraph = 5000
	config.MaxEdgesPerGraph = 25000
	config.MaxHistoryDepth = 500

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxNodesPerGraph = 100000
	config.MaxEdgesPerGraph = 500000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		return errInvalid("zoom bounds must satisfy 0 < min <= max")
	}
	if c.ZoomStep <= 0 {
		return errInvalid("zoom step must be positive")
	}
	if c.MaxHistoryDepth < 0 {
		return errInvalid("history depth cannot be negative")
	}
	if c.PlaceholderLabel == "" {
		return errInvalid("placeholder label cannot be empty")
	}
	return nil
}

type configError string

func (e configError) Error() string { return "domain config: " + string(e) }

func errInvalid(msg string) error { return configError(msg) }
