package validation

import (
	"unicode/utf8"

	"github.com/itchan-dev/aurum/shared/errors"
)

type MessageValidator struct {
	MaxLen int
}

func NewMessageValidator(maxLen int) *MessageValidator {
	return &MessageValidator{MaxLen: maxLen}
}

// Text rejects over-long text. Empty text is the composer's business, not an error.
func (v *MessageValidator) Text(text string) error {
	if v.MaxLen > 0 && utf8.RuneCountInString(text) > v.MaxLen {
		return errors.BadRequest("Text is too long")
	}
	return nil
}
