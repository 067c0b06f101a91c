// Meridian - Live Location Sharing Relay and Viewer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package models

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/meridian/internal/geo"
	"github.com/tomtom215/meridian/internal/validation"
)

var (
	// ErrMalformedReport is returned when a frame is not a position report:
	// not a JSON object, a missing or unknown field, a null, or a wrong type.
	ErrMalformedReport = errors.New("malformed position report")

	// ErrInvalidReport is returned when a well-formed report carries an
	// unusable participant ID or out-of-range coordinates.
	ErrInvalidReport = errors.New("invalid position report")
)

// Wire field names. A frame carries exactly these three keys.
const (
	fieldParticipantID = "participantId"
	fieldLatitude      = "latitude"
	fieldLongitude     = "longitude"
)

// PositionReport is one participant's position at one moment. It has no
// timestamp or sequence number; receivers apply reports in arrival order.
//
// A report at exactly (0, 0) is a retire report: it tells receivers to
// remove the participant's marker while keeping its registry entry.
//
//	{"participantId":"alice","latitude":51.5074,"longitude":-0.1278}
type PositionReport struct {
	ParticipantID string  `json:"participantId" validate:"participant"`
	Latitude      float64 `json:"latitude" validate:"latitude"`
	Longitude     float64 `json:"longitude" validate:"longitude"`
}

// NewPositionReport builds a report from a coordinate.
func NewPositionReport(id string, c geo.Coordinate) PositionReport {
	return PositionReport{ParticipantID: id, Latitude: c.Lat, Longitude: c.Lon}
}

// RetireReport returns the (0, 0) retire report for id.
func RetireReport(id string) PositionReport {
	return PositionReport{ParticipantID: id}
}

// IsRetire reports whether r is a retire report.
func (r PositionReport) IsRetire() bool {
	return r.Latitude == 0 && r.Longitude == 0
}

// Coordinate returns the report position.
func (r PositionReport) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: r.Latitude, Lon: r.Longitude}
}

// Validate checks the participant ID and coordinate ranges.
func (r PositionReport) Validate() error {
	if verr := validation.ValidateStruct(&r); verr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, verr)
	}
	return nil
}

// EncodeReport validates r and returns its wire form.
func EncodeReport(r PositionReport) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode position report: %w", err)
	}
	return data, nil
}

// DecodeReport parses one frame. It checks structure only; callers that need
// range checks call Validate on the result.
func DecodeReport(data []byte) (PositionReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return PositionReport{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if fields == nil {
		return PositionReport{}, fmt.Errorf("%w: not an object", ErrMalformedReport)
	}

	for key := range fields {
		switch key {
		case fieldParticipantID, fieldLatitude, fieldLongitude:
		default:
			return PositionReport{}, fmt.Errorf("%w: unknown field %q", ErrMalformedReport, key)
		}
	}

	var r PositionReport
	if err := decodeField(fields, fieldParticipantID, &r.ParticipantID); err != nil {
		return PositionReport{}, err
	}
	if err := decodeField(fields, fieldLatitude, &r.Latitude); err != nil {
		return PositionReport{}, err
	}
	if err := decodeField(fields, fieldLongitude, &r.Longitude); err != nil {
		return PositionReport{}, err
	}
	return r, nil
}

var jsonNull = []byte("null")

func decodeField(fields map[string]json.RawMessage, key string, dst interface{}) error {
	raw, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: missing field %q", ErrMalformedReport, key)
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return fmt.Errorf("%w: field %q is null", ErrMalformedReport, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: field %q: %v", ErrMalformedReport, key, err)
	}
	return nil
}
