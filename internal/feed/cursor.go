package feed

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// ErrBadCursor is returned when a continuation token cannot be decoded.
var ErrBadCursor = errors.New("malformed continuation cursor")

// ScanPosition is the resume point of the underlying catalog scan. It
// tracks the last row the scan consumed, not the last row returned to
// the client; the two diverge because seen items are filtered out.
type ScanPosition struct {
	CreatedAt time.Time
	ID        string
}

// cursorToken is the wire shape of an encoded ScanPosition.
type cursorToken struct {
	T  int64  `json:"t"`
	ID string `json:"id"`
}

// EncodeCursor encodes a scan position into an opaque token.
func EncodeCursor(pos *ScanPosition) string {
	if pos == nil {
		return ""
	}
	raw, err := json.Marshal(cursorToken{
		T:  pos.CreatedAt.UnixMicro(),
		ID: pos.ID,
	})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor decodes an opaque token back into a scan position. An
// empty token means "start of catalog" and decodes to nil.
func DecodeCursor(token string) (*ScanPosition, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrBadCursor
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, ErrBadCursor
	}
	if tok.ID == "" {
		return nil, ErrBadCursor
	}
	return &ScanPosition{
		CreatedAt: time.UnixMicro(tok.T).UTC(),
		ID:        tok.ID,
	}, nil
}
