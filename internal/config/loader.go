package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the YAML file at path (optional) over the defaults, applies APP_*
// environment overrides and validates the result. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.version", d.App.Version)
	v.SetDefault("app.env", d.App.Env)
	v.SetDefault("app.port", d.App.Port)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.output_target", d.Logger.OutputTarget)
	v.SetDefault("logger.time_field", d.Logger.TimeField)
	v.SetDefault("logger.time_format", d.Logger.TimeFormat)
	v.SetDefault("logger.service_name", d.App.Name)
	v.SetDefault("logger.service_version", d.App.Version)
	v.SetDefault("logger.env", d.Logger.Env)
	v.SetDefault("logger.with_caller", d.Logger.WithCaller)
	v.SetDefault("logger.stacktrace", d.Logger.Stacktrace)
	v.SetDefault("logger.stacktrace_min_level", d.Logger.StacktraceMinLevel)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("postgres.host", d.Postgres.Host)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.user", d.Postgres.User)
	v.SetDefault("postgres.password", d.Postgres.Password)
	v.SetDefault("postgres.db", d.Postgres.DBName)
	v.SetDefault("postgres.sslmode", d.Postgres.SSLMode)
	v.SetDefault("postgres.max_conns", d.Postgres.MaxConns)
	v.SetDefault("postgres.min_conns", d.Postgres.MinConns)
	v.SetDefault("postgres.max_conn_lifetime", d.Postgres.MaxConnLifetime)
	v.SetDefault("postgres.max_conn_idle_time", d.Postgres.MaxConnIdleTime)
	v.SetDefault("postgres.health_check_period", d.Postgres.HealthCheckPeriod)

	s := d.Simulation
	v.SetDefault("simulation.event_chance", s.EventChance)
	v.SetDefault("simulation.weights.goal", s.Weights.Goal)
	v.SetDefault("simulation.weights.yellow_card", s.Weights.YellowCard)
	v.SetDefault("simulation.weights.red_card", s.Weights.RedCard)
	v.SetDefault("simulation.weights.substitution", s.Weights.Substitution)
	v.SetDefault("simulation.weights.foul", s.Weights.Foul)
	v.SetDefault("simulation.weights.penalty", s.Weights.Penalty)
	v.SetDefault("simulation.weights.corner", s.Weights.Corner)
	v.SetDefault("simulation.weights.offside", s.Weights.Offside)
	v.SetDefault("simulation.weights.free_kick", s.Weights.FreeKick)
	v.SetDefault("simulation.weights.injury", s.Weights.Injury)
	v.SetDefault("simulation.home_advantage", s.HomeAdvantage)
	v.SetDefault("simulation.assist_chance", s.AssistChance)
	v.SetDefault("simulation.penalty_conversion", s.PenaltyConversion)
	v.SetDefault("simulation.substitution_after", s.SubstitutionAfter)
	v.SetDefault("simulation.max_substitutions", s.MaxSubstitutions)
	v.SetDefault("simulation.default_seed", s.DefaultSeed)

	v.SetDefault("softstate.provider", d.SoftState.Provider)
	v.SetDefault("softstate.model", d.SoftState.Model)
	v.SetDefault("softstate.api_key", d.SoftState.APIKey)
	v.SetDefault("softstate.max_delta", d.SoftState.MaxDelta)

	v.SetDefault("http.allowed_origins", d.HTTP.AllowedOrigins)
	v.SetDefault("http.rate_limit", d.HTTP.RateLimit)
	v.SetDefault("http.rate_burst", d.HTTP.RateBurst)
}
