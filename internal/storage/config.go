package storage

import "os"

// Mode selects the call log backing store
type Mode string

const (
	ModeFile        Mode = "file"
	ModeDynamoLocal Mode = "local"
	ModeDynamoAWS   Mode = "aws"
	ModeNone        Mode = "none"
)

// Config holds backing store configuration
type Config struct {
	Mode         Mode
	FilePath     string // for file mode
	Endpoint     string // for local DynamoDB mode
	Region       string
	CallLogTable string
}

// LoadConfig loads store config from environment
func LoadConfig() Config {
	mode := Mode(getEnv("LOG_STORE", "file"))
	switch mode {
	case ModeFile, ModeDynamoLocal, ModeDynamoAWS:
	default:
		mode = ModeNone
	}

	return Config{
		Mode:         mode,
		FilePath:     getEnv("CALL_LOG_PATH", "call_logs.json"),
		Endpoint:     getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:       getEnv("DYNAMO_REGION", "eu-central-1"),
		CallLogTable: getEnv("DYNAMO_CALL_LOG_TABLE", "kiosk-call-log"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
