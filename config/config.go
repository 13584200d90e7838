// Copyright 2026 crossfold Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of crossfold. Values come from defaults, an optional
// TOML or YAML file and CROSSFOLD_* environment variables, in increasing priority.
type Config struct {
	Split   SplitConfig   `mapstructure:"split"`
	Train   TrainConfig   `mapstructure:"train"`
	Reduct  ReductConfig  `mapstructure:"reduct"`
	Storage StorageConfig `mapstructure:"storage"`
	History HistoryConfig `mapstructure:"history"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SplitConfig controls fold assignment.
type SplitConfig struct {
	Folds     int    `mapstructure:"folds" validate:"gte=1"`
	Seed      int64  `mapstructure:"seed"`
	Shuffle   bool   `mapstructure:"shuffle"`
	TrainSets bool   `mapstructure:"train_sets"`
	Format    string `mapstructure:"format" validate:"oneof=arff csv"`
}

// TrainConfig holds the hyper-parameters of the default trainer.
type TrainConfig struct {
	LearningRate  float64 `mapstructure:"learning_rate" validate:"gte=0,lte=1"`
	Momentum      float64 `mapstructure:"momentum" validate:"gte=0,lte=1"`
	Epochs        int     `mapstructure:"epochs" validate:"gte=1"`
	HiddenLayers  []int   `mapstructure:"hidden_layers" validate:"dive,gte=1"`
	PositiveClass string  `mapstructure:"positive_class"`
	Seed          int64   `mapstructure:"seed"`
	Jobs          int     `mapstructure:"jobs" validate:"gte=1"`
}

type ReductConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=none all dec"`
}

type StorageConfig struct {
	S3    S3Config        `mapstructure:"s3"`
	GCS   GCSConfig       `mapstructure:"gcs"`
	Azure AzureBlobConfig `mapstructure:"azure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type GCSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
}

type AzureBlobConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	Endpoint         string `mapstructure:"endpoint"`
}

// HistoryConfig locates the run history database. An empty path disables it.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig controls the Prometheus text file written after each run.
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path" validate:"required_if=Enable true"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Split: SplitConfig{
			Folds:  10,
			Format: "arff",
		},
		Train: TrainConfig{
			LearningRate: 0.3,
			Momentum:     0.2,
			Epochs:       500,
			HiddenLayers: []int{},
			Jobs:         4,
		},
		Reduct: ReductConfig{
			Mode: "all",
		},
		Metrics: MetricsConfig{
			Path: "crossfold.prom",
		},
	}
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [split]
	viper.SetDefault("split.folds", defaultConfig.Split.Folds)
	viper.SetDefault("split.seed", defaultConfig.Split.Seed)
	viper.SetDefault("split.shuffle", defaultConfig.Split.Shuffle)
	viper.SetDefault("split.train_sets", defaultConfig.Split.TrainSets)
	viper.SetDefault("split.format", defaultConfig.Split.Format)
	// [train]
	viper.SetDefault("train.learning_rate", defaultConfig.Train.LearningRate)
	viper.SetDefault("train.momentum", defaultConfig.Train.Momentum)
	viper.SetDefault("train.epochs", defaultConfig.Train.Epochs)
	viper.SetDefault("train.hidden_layers", defaultConfig.Train.HiddenLayers)
	viper.SetDefault("train.positive_class", defaultConfig.Train.PositiveClass)
	viper.SetDefault("train.seed", defaultConfig.Train.Seed)
	viper.SetDefault("train.jobs", defaultConfig.Train.Jobs)
	// [reduct]
	viper.SetDefault("reduct.mode", defaultConfig.Reduct.Mode)
	// [storage]
	viper.SetDefault("storage.s3.endpoint", "")
	viper.SetDefault("storage.s3.access_key_id", "")
	viper.SetDefault("storage.s3.secret_access_key", "")
	viper.SetDefault("storage.s3.region", "")
	viper.SetDefault("storage.s3.use_ssl", false)
	viper.SetDefault("storage.gcs.credentials_file", "")
	viper.SetDefault("storage.gcs.endpoint", "")
	viper.SetDefault("storage.azure.connection_string", "")
	viper.SetDefault("storage.azure.account_name", "")
	viper.SetDefault("storage.azure.account_key", "")
	viper.SetDefault("storage.azure.endpoint", "")
	// [history]
	viper.SetDefault("history.path", defaultConfig.History.Path)
	// [metrics]
	viper.SetDefault("metrics.enable", defaultConfig.Metrics.Enable)
	viper.SetDefault("metrics.path", defaultConfig.Metrics.Path)
}

func init() {
	setDefault()
	// CROSSFOLD_TRAIN_LEARNING_RATE overrides train.learning_rate
	viper.SetEnvPrefix("crossfold")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig reads a configuration file. An empty path yields the defaults with
// environment overrides applied.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType(configType(path))
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var config Config
	if err := viper.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

// configType infers the format from the extension, ignoring a trailing .template.
// Unknown extensions are read as TOML.
func configType(path string) string {
	path = strings.TrimSuffix(path, ".template")
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if slices.Contains(viper.SupportedExts, ext) {
		return ext
	}
	return "toml"
}

var validate = validator.New()

func (config *Config) Validate() error {
	return validate.Struct(config)
}
