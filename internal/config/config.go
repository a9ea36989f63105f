package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	Database Database `envPrefix:"DATABASE_"`
	Stripe   Stripe   `envPrefix:"STRIPE_"`
	Mail     Mail     `envPrefix:"MAIL_"`
	Security Security
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql
	URL    string `env:"URL" envDefault:"payment_forms.db"`
}

type Stripe struct {
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
}

type Mail struct {
	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	FromEmail      string `env:"FROM_EMAIL"`
	FromName       string `env:"FROM_NAME" envDefault:"Payment Forms"`
	AdminEmail     string `env:"ADMIN_EMAIL"`

	AdminSubject     string `env:"ADMIN_SUBJECT" envDefault:"New payment for {form_title}"`
	AdminTemplate    string `env:"ADMIN_TEMPLATE" envDefault:"<p>A payment of {amount} {currency} was received for <b>{form_title}</b>.</p><p>Submission: {submission_id}<br>Transaction: {transaction_ref}<br>Mode: {mode}</p>{fields}"`
	CustomerSubject  string `env:"CUSTOMER_SUBJECT" envDefault:"Your payment receipt"`
	CustomerTemplate string `env:"CUSTOMER_TEMPLATE" envDefault:"<p>Thank you! Your payment of {amount} {currency} for <b>{form_title}</b> was received.</p><p>Reference: {transaction_ref}</p>"`
}

type Security struct {
	NonceSecret string `env:"NONCE_SECRET"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
