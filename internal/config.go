package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BotToken         string        `env:"TOKEN,required=true"`
	BackendBaseURL   string        `env:"BACKEND_BASE_URL,required=true"`
	BackendTimeout   time.Duration `env:"BACKEND_TIMEOUT,required=true"`
	TelegramTimeout  time.Duration `env:"TELEGRAM_TIMEOUT,required=true"`
	PollTimeoutSec   int           `env:"POLL_TIMEOUT_SECONDS,required=true"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	SessionNamespace string        `env:"SESSION_NAMESPACE,required=true"`
	NumberOfWorkers  int           `env:"NUMBER_OF_WORKERS,required=true"`
	BufferSize       int           `env:"BUFFER_SIZE,required=true"`
	LogLevel         string        `env:"LOG_LEVEL,required=true"`
	HeartbeatPeriod  time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`

	// Mutation hook endpoint the backend posts to after commits.
	HookAddr   string `env:"HOOK_ADDR,required=true"`
	HookSecret string `env:"HOOK_SECRET"`

	// Outbound moderation, disabled when no word list is configured.
	BlockedWordsPath string `env:"BLOCKED_WORDS_PATH"`
	CensorChar       string `env:"CHARACTER_REPLACEMENT,default=*"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
