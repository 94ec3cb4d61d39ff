package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ChannelSeparator joins channel names in the experiments table.
const ChannelSeparator = ", "

// ErrMissingID is reported by Validate for records without an id.
var ErrMissingID = errors.New("experiment record has no id")

// RecordID is an opaque row key. Upstreams send either a UUID string or an
// integer; both are kept as their literal text.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	s, err := decodeScalar(data)
	if err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = RecordID(s)
	return nil
}

// ELNRef is a notebook entry reference. Notebooks hand out string or numeric
// ids, so it decodes like RecordID.
type ELNRef string

func (ref *ELNRef) UnmarshalJSON(data []byte) error {
	s, err := decodeScalar(data)
	if err != nil {
		return fmt.Errorf("decode eln_id: %w", err)
	}
	*ref = ELNRef(s)
	return nil
}

// decodeScalar returns a JSON string, number or null as text.
func decodeScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// ExperimentRecord is one row of the experiments listing as served by the
// experiments API.
type ExperimentRecord struct {
	ID              RecordID `json:"id"`
	AcquisitionDate string   `json:"acquisition_date"`
	UserID          string   `json:"user_id"`
	Microscope      string   `json:"microscope"`
	Objective       string   `json:"objective"`
	Channels        []string `json:"channels"`
	ELNID           ELNRef   `json:"eln_id"`
}

// JoinedChannels renders the channel list for display.
func (r ExperimentRecord) JoinedChannels() string {
	return strings.Join(r.Channels, ChannelSeparator)
}

// Validate reports records that cannot be keyed.
func (r ExperimentRecord) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	return nil
}

// Experiment is a stored acquisition session.
type Experiment struct {
	ID                string
	AcquisitionDate   time.Time
	UserID            string
	Microscope        string
	Objective         string
	NumericalAperture *float64
	PixelSizeXY       *float64
	PixelSizeZ        *float64
	Channels          []string
	RawPath           string
	ELNID             string
	CreatedAt         time.Time
}

// Record projects a stored experiment onto the listing wire shape.
func (e *Experiment) Record() ExperimentRecord {
	channels := e.Channels
	if channels == nil {
		channels = []string{}
	}
	return ExperimentRecord{
		ID:              RecordID(e.ID),
		AcquisitionDate: e.AcquisitionDate.UTC().Format(time.RFC3339),
		UserID:          e.UserID,
		Microscope:      e.Microscope,
		Objective:       e.Objective,
		Channels:        channels,
		ELNID:           ELNRef(e.ELNID),
	}
}
