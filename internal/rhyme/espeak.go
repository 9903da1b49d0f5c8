package rhyme

import (
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// DefaultEspeakCommands are tried in order when no command is configured.
var DefaultEspeakCommands = []string{"espeak-ng", "espeak"}

// Espeak transcribes words to IPA with an espeak binary.
type Espeak struct {
	path   string
	logger *zap.Logger
}

// DetectEspeak locates an espeak binary. When command is empty the default
// commands are tried. It reports false when none is installed.
func DetectEspeak(command string, logger *zap.Logger) (*Espeak, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	candidates := DefaultEspeakCommands
	if command != "" {
		candidates = []string{command}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return &Espeak{path: path, logger: logger}, true
		}
	}
	logger.Debug("no espeak binary found", zap.Strings("candidates", candidates))
	return nil, false
}

// Path returns the resolved binary path.
func (e *Espeak) Path() string {
	return e.path
}

// Transcribe implements Transcriber.
func (e *Espeak) Transcribe(ctx context.Context, word, lang string) (string, bool) {
	out, err := exec.CommandContext(ctx, e.path, "-q", "--ipa", "-v", lang, word).Output()
	if err != nil {
		e.logger.Debug("espeak failed", zap.String("word", word), zap.Error(err))
		return "", false
	}
	ipa := strings.Join(strings.Fields(string(out)), " ")
	if ipa == "" {
		return "", false
	}
	return ipa, true
}
