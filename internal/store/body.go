package store

import (
	"os"

	"github.com/sadopc/wiretap/internal/capture"
)

// BodyPayload is the decoded textual body of an exchange. Data is ""
// for an empty or absent body; it is never an error to ask for one.
type BodyPayload struct {
	Data string
}

// BodyText loads the decoded body text for an exchange. The loader
// takes the full record rather than an id: decoding may consult more
// of it than the path. A missing file degrades to an empty payload.
func (s *Store) BodyText(ex *capture.Exchange) (BodyPayload, error) {
	if ex.BodyPath == "" {
		return BodyPayload{}, nil
	}
	data, err := os.ReadFile(ex.BodyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return BodyPayload{}, nil
		}
		return BodyPayload{}, err
	}
	return BodyPayload{Data: string(data)}, nil
}
