package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Providers struct {
		GooglePlaces struct {
			APIKey         string `mapstructure:"apiKey"`
			MaxPerSecond   int    `mapstructure:"maxRequestsPerSecond"`
			MaxPerDay      int    `mapstructure:"maxRequestsPerDay"`
			DefaultRadiusM int    `mapstructure:"defaultRadiusM"`
		} `mapstructure:"googlePlaces"`
		LLM struct {
			Provider    string  `mapstructure:"provider"` // gateway | gemini
			Temperature float32 `mapstructure:"temperature"`
			MaxTokens   int     `mapstructure:"maxTokens"`
			Gateway     struct {
				Endpoint   string `mapstructure:"endpoint"`
				Deployment string `mapstructure:"deployment"`
				APIVersion string `mapstructure:"apiVersion"`
				AppKey     string `mapstructure:"appKey"`
				OAuth      struct {
					TokenURL     string `mapstructure:"tokenURL"`
					ClientID     string `mapstructure:"clientID"`
					ClientSecret string `mapstructure:"clientSecret"`
				} `mapstructure:"oauth"`
			} `mapstructure:"gateway"`
			Gemini struct {
				APIKey string `mapstructure:"apiKey"`
				Model  string `mapstructure:"model"`
			} `mapstructure:"gemini"`
		} `mapstructure:"llm"`
	} `mapstructure:"providers"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets come from the environment, never from the file.
	v.SetEnvPrefix("TRAVELBUDDY")
	v.AutomaticEnv()
	_ = v.BindEnv("providers.googlePlaces.apiKey", "GOOGLE_PLACES_API_KEY")
	_ = v.BindEnv("providers.llm.gateway.oauth.clientID", "CLIENT_ID")
	_ = v.BindEnv("providers.llm.gateway.oauth.clientSecret", "CLIENT_SECRET")
	_ = v.BindEnv("providers.llm.gateway.oauth.tokenURL", "OAUTH_URL")
	_ = v.BindEnv("providers.llm.gateway.endpoint", "AZURE_OPENAI_ENDPOINT")
	_ = v.BindEnv("providers.llm.gateway.deployment", "AZURE_OPENAI_DEPLOYMENT_NAME")
	_ = v.BindEnv("providers.llm.gateway.appKey", "AZURE_APP_KEY")
	_ = v.BindEnv("providers.llm.gemini.apiKey", "GOOGLE_GEMINI_API_KEY")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
