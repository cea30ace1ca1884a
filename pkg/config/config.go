package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/emission"
	"ecoroute/pkg/traffic"
)

type Config struct {
	Listen string `yaml:"listen"`

	Data struct {
		Places string `yaml:"places"`
		Cities string `yaml:"cities"`
		Cars   string `yaml:"cars"`
	} `yaml:"data"`

	Graph struct {
		KNearest int `yaml:"k-nearest"`
	} `yaml:"graph"`

	Traffic struct {
		CachePath    string `yaml:"cache-path"`
		TTLMinutes   int    `yaml:"ttl-minutes"`
		SampleStride int    `yaml:"sample-stride"`
		APIKey       string `yaml:"api-key"`
		TimeoutMS    int    `yaml:"timeout-ms"`
	} `yaml:"traffic"`

	Emission struct {
		DefaultGramsPerKm float64 `yaml:"default-grams-per-km"`
	} `yaml:"emission"`

	History struct {
		Dir string `yaml:"dir"`
	} `yaml:"history"`
}

// ReadConfig loads the yaml config file and fills every unset field
// with its default.
func ReadConfig(file string) (Config, error) {
	config := Default()
	data, err := os.ReadFile(file)
	if err != nil {
		return config, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config file: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

func Default() Config {
	var config Config
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":6060"
	}
	if c.Data.Places == "" {
		c.Data.Places = "data/places.txt"
	}
	if c.Data.Cities == "" {
		c.Data.Cities = "data/cities.csv"
	}
	if c.Data.Cars == "" {
		c.Data.Cars = "data/cars.csv"
	}
	if c.Graph.KNearest <= 0 {
		c.Graph.KNearest = datastructure.DefaultKNearest
	}
	if c.Traffic.CachePath == "" {
		c.Traffic.CachePath = "data/traffic_cache.txt"
	}
	if c.Traffic.TTLMinutes <= 0 {
		c.Traffic.TTLMinutes = traffic.DefaultCacheTTLMinutes
	}
	if c.Traffic.SampleStride <= 0 {
		c.Traffic.SampleStride = traffic.DefaultSampleStride
	}
	if c.Traffic.TimeoutMS <= 0 {
		c.Traffic.TimeoutMS = int(traffic.DefaultSampleTimeout.Milliseconds())
	}
	if c.Emission.DefaultGramsPerKm <= 0 {
		c.Emission.DefaultGramsPerKm = emission.DefaultCO2GramsPerKm
	}
	if c.History.Dir == "" {
		c.History.Dir = "data/history_db"
	}
}
