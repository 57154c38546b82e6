package logging

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// forward logs each non-empty line read from r until EOF.
func forward(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			log.Warn().Str("source", "stderr").Msg(line)
		}
	}
}
