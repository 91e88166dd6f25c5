package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	SQLite    SQLiteConfig
	Remote    RemoteConfig
	Sync      SyncConfig
	Lock      LockConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	I18n      I18nConfig
	Snowflake SnowflakeConfig
}

type AppConfig struct {
	AppEnv   string
	Language string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
	FilePath          string
	FileMaxAge        time.Duration
}

type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	BusyTimeout  time.Duration
}

type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	Routes  RoutesConfig
}

// RoutesConfig holds the backend paths. Paths containing {id} are expanded by
// the remote client.
type RoutesConfig struct {
	Login           string
	Register        string
	Perfumes        string
	Perfume         string
	Users           string
	User            string
	UserRole        string
	CartByUser      string
	CartItems       string
	CartItem        string
	Cart            string
	Orders          string
	Order           string
	OrdersByUser    string
	OrderStatus     string
	Payments        string
	Payment         string
	PaymentsByOrder string
}

type SyncConfig struct {
	RefreshTimeout time.Duration
	RefreshOnStart bool
}

type LockConfig struct {
	Backend  string // memory or redis
	TTL      time.Duration
	Attempts int
	Backoff  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

// I18nConfig lists extra locale files merged over the embedded es/en ones.
type I18nConfig struct {
	ExtraLocales []string
}

type SnowflakeConfig struct {
	Node int64
}

func LoadEnv() *Config {
	return &Config{
		App: AppConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			Language: getEnv("APP_LANGUAGE", "es"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
			FilePath:          getEnv("LOGGER_FILE", ""),
			FileMaxAge:        getEnvDuration("LOGGER_FILE_MAX_AGE", 7*24*time.Hour),
		},
		SQLite: SQLiteConfig{
			Path:         getEnv("SQLITE_PATH", "superfume_database.db"),
			MaxOpenConns: getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
			BusyTimeout:  getEnvDuration("SQLITE_BUSY_TIMEOUT", 5*time.Second),
		},
		Remote: RemoteConfig{
			BaseURL: strings.TrimRight(getEnv("REMOTE_BASE_URL", "http://10.0.2.2:8080"), "/"),
			Timeout: getEnvDuration("REMOTE_TIMEOUT", 15*time.Second),
			Routes:  loadRoutes(),
		},
		Sync: SyncConfig{
			RefreshTimeout: getEnvDuration("SYNC_REFRESH_TIMEOUT", 30*time.Second),
			RefreshOnStart: getEnvBool("SYNC_REFRESH_ON_START", true),
		},
		Lock: LockConfig{
			Backend:  getEnv("LOCK_BACKEND", "memory"),
			TTL:      getEnvDuration("LOCK_TTL", 5*time.Second),
			Attempts: getEnvInt("LOCK_ATTEMPTS", 3),
			Backoff:  getEnvDuration("LOCK_BACKOFF", 100*time.Millisecond),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_CATALOG", "catalog.events"),
			GroupID: getEnv("KAFKA_GROUP_SYNC", "superfume-sync"),
		},
		I18n: I18nConfig{
			ExtraLocales: getEnvSlice("I18N_EXTRA_LOCALES", nil),
		},
		Snowflake: SnowflakeConfig{
			Node: int64(getEnvInt("SNOWFLAKE_NODE", 1)),
		},
	}
}

// DefaultRoutes mirrors the backend contract.
func DefaultRoutes() RoutesConfig {
	return RoutesConfig{
		Login:           "/api/auth/login",
		Register:        "/api/auth/register",
		Perfumes:        "/api/perfumes",
		Perfume:         "/api/perfumes/{id}",
		Users:           "/api/usuario",
		User:            "/api/usuario/{id}",
		UserRole:        "/api/usuario/{id}/rol",
		CartByUser:      "/api/carrito/usuario/{id}",
		CartItems:       "/api/carrito/{id}/items",
		CartItem:        "/api/carrito/items/{id}",
		Cart:            "/api/carrito/{id}",
		Orders:          "/api/pedido",
		Order:           "/api/pedido/{id}",
		OrdersByUser:    "/api/pedido/usuario/{id}",
		OrderStatus:     "/api/pedido/{id}/estado",
		Payments:        "/api/pago",
		Payment:         "/api/pago/{id}",
		PaymentsByOrder: "/api/pago/pedido/{id}",
	}
}

func loadRoutes() RoutesConfig {
	d := DefaultRoutes()
	return RoutesConfig{
		Login:           getEnv("ROUTE_LOGIN", d.Login),
		Register:        getEnv("ROUTE_REGISTER", d.Register),
		Perfumes:        getEnv("ROUTE_PERFUMES", d.Perfumes),
		Perfume:         getEnv("ROUTE_PERFUME", d.Perfume),
		Users:           getEnv("ROUTE_USERS", d.Users),
		User:            getEnv("ROUTE_USER", d.User),
		UserRole:        getEnv("ROUTE_USER_ROLE", d.UserRole),
		CartByUser:      getEnv("ROUTE_CART_BY_USER", d.CartByUser),
		CartItems:       getEnv("ROUTE_CART_ITEMS", d.CartItems),
		CartItem:        getEnv("ROUTE_CART_ITEM", d.CartItem),
		Cart:            getEnv("ROUTE_CART", d.Cart),
		Orders:          getEnv("ROUTE_ORDERS", d.Orders),
		Order:           getEnv("ROUTE_ORDER", d.Order),
		OrdersByUser:    getEnv("ROUTE_ORDERS_BY_USER", d.OrdersByUser),
		OrderStatus:     getEnv("ROUTE_ORDER_STATUS", d.OrderStatus),
		Payments:        getEnv("ROUTE_PAYMENTS", d.Payments),
		Payment:         getEnv("ROUTE_PAYMENT", d.Payment),
		PaymentsByOrder: getEnv("ROUTE_PAYMENTS_BY_ORDER", d.PaymentsByOrder),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
