package logging

import (
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// Setup routes apex/log output to stderr at the given level. Unknown levels fall back to info.
func Setup(level string) {
	log.SetHandler(text.New(os.Stderr))
	log.SetLevel(levelFromString(level))
}

func levelFromString(value string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
