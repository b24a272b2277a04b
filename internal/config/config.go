package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"catalog-matcher/internal/reconcile/service"
)

type Config struct {
	Host           string
	Port           int
	AllowOrigins   []string
	LogLevel       string
	MaxUploadMB    int
	LogFile        string
	VocabularyFile string // пусто: встроенный словарь
	Workers        int    // параллельных матчеров в пакетной привязке картинок
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	workers, _ := strconv.Atoi(getenv("MATCH_WORKERS", "4"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           port,
		AllowOrigins:   origins,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		MaxUploadMB:    mb,
		LogFile:        getenv("LOG_FILE", "logs/catalog-matcher.log"),
		VocabularyFile: getenv("VOCABULARY_FILE", ""),
		Workers:        max(workers, 1),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Vocabulary returns the built-in vocabulary, or the one from VocabularyFile
// laid over it.
func (c Config) Vocabulary() (service.Vocabulary, error) {
	if c.VocabularyFile == "" {
		return service.DefaultVocabulary(), nil
	}
	f, err := os.Open(c.VocabularyFile)
	if err != nil {
		return service.Vocabulary{}, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	return service.ParseVocabulary(f)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
