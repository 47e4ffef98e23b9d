package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/cachesim/mem/trace"
)

const (
	envRecord      = "CACHESIM_RECORD"
	envMonitorPort = "CACHESIM_MONITOR_PORT"
	envS3Endpoint  = "CACHESIM_S3_ENDPOINT"
	envS3AccessKey = "CACHESIM_S3_ACCESS_KEY"
	envS3SecretKey = "CACHESIM_S3_SECRET_KEY"
	envS3Secure    = "CACHESIM_S3_SECURE"
)

// loadEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func loadEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func envInt(name string, fallback int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

func envBool(name string) bool {
	b, _ := strconv.ParseBool(os.Getenv(name))
	return b
}

func traceOpenOptions() trace.OpenOptions {
	return trace.OpenOptions{
		S3Endpoint:  os.Getenv(envS3Endpoint),
		S3AccessKey: os.Getenv(envS3AccessKey),
		S3SecretKey: os.Getenv(envS3SecretKey),
		S3Secure:    envBool(envS3Secure),
	}
}
