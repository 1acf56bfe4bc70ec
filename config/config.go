package config

import (
	"strconv"
	"time"

	"github.com/pitabwire/frame/config"
)

// AppConfig holds configuration for the audiotasks service.
type AppConfig struct {
	config.ConfigurationDefault

	// Speech to text
	WhisperBackend     string `envDefault:"fasterwhisper" env:"WHISPER_BACKEND"`
	WhisperModelSize   string `envDefault:"base"          env:"WHISPER_MODEL_SIZE"`
	WhisperDevice      string `envDefault:"auto"          env:"WHISPER_DEVICE"`
	WhisperComputeType string `envDefault:"float32"       env:"WHISPER_COMPUTE_TYPE"`
	WhisperBeamSize    int    `envDefault:"5"             env:"WHISPER_BEAM_SIZE"`
	WhisperVADFilter   bool   `envDefault:"true"          env:"WHISPER_VAD_FILTER"`
	WhisperLanguage    string `envDefault:""              env:"WHISPER_LANGUAGE"`
	WhisperPython      string `envDefault:"python3"       env:"WHISPER_PYTHON"`
	WhisperAPIURL      string `envDefault:""              env:"WHISPER_API_URL"`
	WhisperAPIKey      string `envDefault:""              env:"WHISPER_API_KEY"`

	// Ollama
	OllamaHost           string  `envDefault:"http://localhost:11434" env:"OLLAMA_HOST"`
	OllamaModel          string  `envDefault:"gemma3:4b"              env:"OLLAMA_MODEL"`
	OllamaTemperature    float64 `envDefault:"0.3"                    env:"OLLAMA_TEMPERATURE"`
	OllamaMaxTokens      int     `envDefault:"2048"                   env:"OLLAMA_MAX_TOKENS"`
	OllamaTimeoutSeconds int     `envDefault:"120"                    env:"OLLAMA_TIMEOUT_SECONDS"`

	// API and prompts
	MaxUploadSizeMB int    `envDefault:"100" env:"API_MAX_UPLOAD_SIZE_MB"`
	PromptDir       string `envDefault:""    env:"PROMPT_DIR"`
	TempDir         string `envDefault:""    env:"TEMP_DIR"`
}

// SpeechEngineOptions flattens the whisper settings into the option map
// consumed by the engine factories.
func (c *AppConfig) SpeechEngineOptions() map[string]string {
	return map[string]string{
		"model_size":   c.WhisperModelSize,
		"device":       c.WhisperDevice,
		"compute_type": c.WhisperComputeType,
		"beam_size":    strconv.Itoa(c.WhisperBeamSize),
		"vad_filter":   strconv.FormatBool(c.WhisperVADFilter),
		"language":     c.WhisperLanguage,
		"python":       c.WhisperPython,
		"url":          c.WhisperAPIURL,
		"api_key":      c.WhisperAPIKey,
	}
}

// OllamaTimeout returns the Ollama request timeout as a duration.
func (c *AppConfig) OllamaTimeout() time.Duration {
	return time.Duration(c.OllamaTimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}
