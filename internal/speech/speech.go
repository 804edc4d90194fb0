package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// Synthesizer turns digest text into an audio file. Fire-and-forget from the
// pipeline's perspective: a synthesis failure never fails a run.
type Synthesizer interface {
	Speak(ctx context.Context, text, feed string) (string, error)
}

var unsafeFileChars = regexp.MustCompile(`[^\w\-]`)

// CommandSynthesizer shells out to a local TTS binary (espeak-compatible:
// reads text from argv, writes a WAV via -w).
type CommandSynthesizer struct {
	binary    string
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
}

func NewCommandSynthesizer(binary, outputDir string, logger *zap.Logger) *CommandSynthesizer {
	return &CommandSynthesizer{
		binary:    binary,
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
}

// Speak writes the digest audio as brief_<feed>_<yyyymmdd>.wav in the
// output directory and returns the file path.
func (s *CommandSynthesizer) Speak(ctx context.Context, text, feed string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating audio dir: %w", err)
	}

	date := s.now().Format("20060102")
	name := fmt.Sprintf("brief_%s_%s.wav", unsafeFileChars.ReplaceAllString(feed, "_"), date)
	path := filepath.Join(s.outputDir, name)

	intro := fmt.Sprintf("Tech brief for %s.", s.now().Format("January 2, 2006"))
	full := intro + "\n\n" + text

	cmd := exec.CommandContext(ctx, s.binary, "-w", path, full)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tts command failed: %w (%s)", err, string(out))
	}

	s.logger.Info("Audio brief generated",
		zap.String("feed", feed),
		zap.String("path", path))
	return path, nil
}
