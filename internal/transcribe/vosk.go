package transcribe

import (
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
)

// sampleRate is the rate the audio normalizer produces.
const sampleRate = 16000

// VoskTranscriber runs speech recognition against a local Vosk model.
// The model is loaded lazily on first use so a missing model directory is a
// per-call error rather than a startup crash.
type VoskTranscriber struct {
	modelPath string

	mu    sync.Mutex
	model *vosk.VoskModel
}

// NewVosk creates a transcriber for the given model directory.
func NewVosk(modelPath string) *VoskTranscriber {
	return &VoskTranscriber{modelPath: modelPath}
}

// Transcribe recognizes the WAV file and returns the transcript. The WAV
// file is removed after processing regardless of outcome.
func (t *VoskTranscriber) Transcribe(wavPath string) (string, error) {
	defer os.Remove(wavPath)

	if _, err := os.Stat(t.modelPath); os.IsNotExist(err) {
		logging.Warn("transcribe", "model directory %s not found", t.modelPath)
		return "", ErrModelUnavailable
	}

	rec, err := t.newRecognizer()
	if err != nil {
		return "", &InitError{Err: err}
	}

	text, err := stream(wavPath, rec)
	if err != nil {
		return "", &TranscribeError{Err: err}
	}

	logging.Debug("transcribe", "transcript: %s", logging.Truncate(text, 120))
	return text, nil
}

func (t *VoskTranscriber) newRecognizer() (*vosk.VoskRecognizer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model == nil {
		model, err := vosk.NewModel(t.modelPath)
		if err != nil {
			return nil, err
		}
		t.model = model
	}

	rec, err := vosk.NewRecognizer(t.model, sampleRate)
	if err != nil {
		return nil, err
	}
	rec.SetWords(1)
	return rec, nil
}
