package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("HVX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("data.dir", "HVX_DATA_DIR")
	viper.BindEnv("logging.level", "LOG_LEVEL", "HVX_LOG_LEVEL")
	viper.BindEnv("engine.workers", "HVX_WORKERS")
	viper.BindEnv("app.environment", "HVX_ENVIRONMENT")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file: defaults plus env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "hvx-engine")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("engine.workers", 4)
	viper.SetDefault("engine.calculators.comfort", true)
	viper.SetDefault("engine.calculators.rating", true)
	viper.SetDefault("engine.calculators.ventilation", true)
	viper.SetDefault("engine.calculators.occupancy", true)
	viper.SetDefault("engine.calculators.thermal", false)
	viper.SetDefault("comfort.alpha", 0.8)
	viper.SetDefault("comfort.required_rate", 0.95)
	viper.SetDefault("comfort.min_run_length", 3)
	viper.SetDefault("ventilation.outdoor_ppm", 400)
	viper.SetDefault("ventilation.noise_tolerance_ppm", 10)
	viper.SetDefault("ventilation.plateau_margin_ppm", 50)
	viper.SetDefault("ventilation.min_episode_minutes", 30)
	viper.SetDefault("ventilation.min_episode_points", 5)
	viper.SetDefault("ventilation.min_drop_ppm", 100)
	viper.SetDefault("ventilation.min_r2", 0.8)
	viper.SetDefault("occupancy.outdoor_ppm", 400)
	viper.SetDefault("occupancy.elevated_margin_ppm", 150)
	viper.SetDefault("occupancy.rise_ppm_per_minute", 2)
	viper.SetDefault("occupancy.smoothing_window", 3)
	viper.SetDefault("occupancy.generation_m3_per_hour", 0.0187)
	viper.SetDefault("thermal.order", 1)
	viper.SetDefault("aggregation.rating", "worst_case")
	viper.SetDefault("aggregation.category", "worst_case")
}
