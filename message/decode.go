package message

import (
	"encoding/json"

	"github.com/crunchmind/target-kinesis/errors"
)

// Decode parses one raw input line into a Message.
//
// Malformed JSON yields ErrDecodeFailed; a well-formed object without the
// "type" discriminator yields ErrMissingType. Both are protocol faults, not
// transient conditions: the caller is expected to log the offending line and
// halt.
func Decode(line []byte) (*Message, error) {
	if len(line) == 0 {
		return nil, errors.WrapInvalid(errors.ErrDecodeFailed, "Decoder", "Decode", "empty line")
	}

	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, errors.WrapInvalid(errors.ErrDecodeFailed, "Decoder", "Decode", err.Error())
	}

	if msg.Type == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingType, "Decoder", "Decode", "inspect discriminator")
	}

	return &msg, nil
}
