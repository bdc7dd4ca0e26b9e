package config

const defaultDonationMessage = "Informasi dukungan belum diatur oleh admin. Silakan hubungi admin untuk info lebih lanjut."

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:           "info",
			MaxConcurrentChats: 4,
		},
		Telegram: TelegramConfig{
			DropPendingUpdates: true,
			PollTimeout:        30,
		},
		Gemini: GeminiConfig{
			TextModel:      "gemini-2.0-flash",
			ImageModel:     "gemini-2.0-flash-preview-image-generation",
			TimeoutSeconds: 120,
			WebSearch:      true,
			Burst:          5,
		},
		Persona: PersonaConfig{
			Backend: "file", // path empty = backend default
		},
		Support: SupportConfig{
			Message: defaultDonationMessage,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9090",
		},
	}
}
