package softstate

// Provider names accepted by NewProvider.
const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// DefaultMaxDelta bounds a single delta before clamping.
const DefaultMaxDelta = 20

// Config selects and tunes the soft-state provider.
type Config struct {
	Provider string  `mapstructure:"provider" validate:"oneof=mock gemini none"`
	Model    string  `mapstructure:"model"`
	APIKey   string  `mapstructure:"api_key"`
	MaxDelta float64 `mapstructure:"max_delta" validate:"gt=0,lte=100"`
}

// DefaultConfig uses the deterministic mock provider.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderMock,
		Model:    "gemini-1.5-flash",
		MaxDelta: DefaultMaxDelta,
	}
}
