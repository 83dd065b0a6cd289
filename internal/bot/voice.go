package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
	"github.com/earlcamp3344/Telegram-VN-Bot/internal/transcribe"
)

const voiceFallbackText = "Sorry, I couldn't process your voice note. " +
	"Please try typing your request instead."

// handleVoice downloads a voice note, normalizes and transcribes it, then
// feeds the transcript through the free-text path. A "processing"
// placeholder message is edited in place on failure and deleted on success.
func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	placeholder, err := b.api.Send(tgbotapi.NewMessage(chatID, "Processing your voice note..."))
	if err != nil {
		logging.Warn("bot", "placeholder send failed: %v", err)
		return
	}

	data, err := b.downloadVoice(msg.Voice.FileID)
	if err != nil {
		logging.Warn("bot", "voice download failed: %v", err)
		b.editMessage(chatID, placeholder.MessageID, voiceFallbackText)
		return
	}

	wavPath, err := b.converter.ToWAV(data)
	if err != nil {
		logging.Warn("bot", "voice conversion failed: %v", err)
		b.editMessage(chatID, placeholder.MessageID, voiceFallbackText)
		return
	}

	transcript, err := b.stt.Transcribe(wavPath)
	if err != nil {
		b.editMessage(chatID, placeholder.MessageID, transcribeErrorText(err))
		return
	}

	b.deleteMessage(chatID, placeholder.MessageID)
	b.handleFreeText(ctx, chatID, transcript)
}

// downloadVoice fetches the voice note payload from Telegram's file API.
func (b *Bot) downloadVoice(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// transcribeErrorText maps the transcription error taxonomy to user-facing
// messages.
func transcribeErrorText(err error) string {
	var initErr *transcribe.InitError
	switch {
	case errors.Is(err, transcribe.ErrModelUnavailable):
		return "Error: Speech recognition model not available. Please contact the administrator."
	case errors.As(err, &initErr):
		return fmt.Sprintf("Error initializing speech recognition: %v", initErr.Unwrap())
	default:
		return voiceFallbackText
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		logging.Warn("bot", "edit failed: %v", err)
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logging.Warn("bot", "delete failed: %v", err)
	}
}
