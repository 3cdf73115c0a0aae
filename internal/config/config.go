package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	// mercadopago is the live gateway; stripe is kept for the old checkout
	// links that still point at it.
	CheckoutProvider string `env:"CHECKOUT_PROVIDER" envDefault:"mercadopago"`
	Currency         string `env:"CURRENCY" envDefault:"MXN"`

	MercadoPago MercadoPago `envPrefix:"MERCADOPAGO_"`
	Stripe      Stripe      `envPrefix:"STRIPE_"`
}

type MercadoPago struct {
	BaseApiURL  string `env:"BASE_API_URL" envDefault:"https://api.mercadopago.com"`
	AccessToken string `env:"ACCESS_TOKEN"`
	// WebhookToken authenticates inbound notifications via ?token= on the
	// notification URL. Empty disables the check (accepted operational risk).
	WebhookToken string `env:"WEBHOOK_TOKEN"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
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
