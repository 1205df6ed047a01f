package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	CORS      CORSConfig
	WebSocket WebSocketConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	cors, err := loadCORSConfig()
	if err != nil {
		return nil, err
	}

	ws, err := loadWebSocketConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Assistant: assistant, CORS: cors, WebSocket: ws}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AssistantConfig 描述聊天助手的行为配置。
type AssistantConfig struct {
	ReplyDelay        time.Duration
	DefaultResidentID string
}

func loadAssistantConfig() (AssistantConfig, error) {
	delay := 1000 * time.Millisecond
	delayMs, err := parseOptionalIntEnv("ASSISTANT_REPLY_DELAY_MS")
	if err != nil {
		return AssistantConfig{}, err
	}
	if delayMs != nil {
		if *delayMs < 0 {
			return AssistantConfig{}, fmt.Errorf("invalid ASSISTANT_REPLY_DELAY_MS value %d: must not be negative", *delayMs)
		}
		delay = time.Duration(*delayMs) * time.Millisecond
	}

	return AssistantConfig{
		ReplyDelay:        delay,
		DefaultResidentID: getEnvOrDefault("DEFAULT_RESIDENT_ID", "martha"),
	}, nil
}

// CORSConfig 描述跨域配置。
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

func loadCORSConfig() (CORSConfig, error) {
	credentials, err := parseBoolEnv("CORS_ALLOW_CREDENTIALS", false)
	if err != nil {
		return CORSConfig{}, err
	}

	return CORSConfig{
		AllowedOrigins:   parseListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowCredentials: credentials,
	}, nil
}

// WebSocketConfig 描述 WebSocket 连接的保活参数。
type WebSocketConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
}

func loadWebSocketConfig() (WebSocketConfig, error) {
	interval, err := parseOptionalIntEnv("WS_PING_INTERVAL")
	if err != nil {
		return WebSocketConfig{}, err
	}
	pingSeconds := 54
	if interval != nil {
		if *interval < 1 {
			return WebSocketConfig{}, fmt.Errorf("invalid WS_PING_INTERVAL value %d: must be positive", *interval)
		}
		pingSeconds = *interval
	}

	ping := time.Duration(pingSeconds) * time.Second
	// pong 等待时间必须大于 ping 周期
	return WebSocketConfig{
		PingInterval: ping,
		PongWait:     ping * 10 / 9,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
