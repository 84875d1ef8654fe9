package campaign

// Config holds dispatch engine settings.
// Embed this in your app config struct for environment parsing.
type Config struct {
	// Sender is the From address stamped on every outgoing message.
	Sender string `env:"EMAIL_SENDER,required"`

	// BaseURL is the public root of the tracking endpoints, e.g.
	// "https://mail.example.com/". Tracked links and pixels resolve
	// against it.
	BaseURL string `env:"TRACKING_BASE_URL,required"`

	// EmailsPerHour caps the sustained send rate. Zero or negative
	// disables pacing.
	EmailsPerHour int `env:"EMAILS_PER_HOUR" envDefault:"500"`
}
