package environment

import (
	"os"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	NatsURL     string
	NatsSubject string
	SqsQueueUrl string
	AwsRegion   string
}

func ReadEnvConfig() *EnvConfig {
	// a missing .env file is fine, the variables may come from the shell
	_ = godotenv.Load()

	result := &EnvConfig{
		NatsURL:     os.Getenv("NATS_URL"),
		NatsSubject: os.Getenv("NATS_SUBJECT"),
		SqsQueueUrl: os.Getenv("SQS_QUEUE_URL"),
		AwsRegion:   os.Getenv("AWS_REGION"),
	}

	if result.AwsRegion == "" {
		result.AwsRegion = "eu-central-1"
	}

	return result
}
