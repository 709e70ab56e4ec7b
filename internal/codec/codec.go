// Package codec serializes aggregate snapshots for storage.
//
// Two codecs are available: "json", readable and the default, and "cbor",
// a compact binary form using Core Deterministic Encoding so equal
// aggregates always produce identical bytes.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec names.
const (
	NameJSON = "json"
	NameCBOR = "cbor"
)

// ErrUnknownCodec is returned by ByName for unregistered names.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec encodes and decodes snapshot payloads.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch name {
	case NameJSON, "":
		return JSON{}, nil
	case NameCBOR:
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// JSON is the encoding/json codec.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return NameJSON }

// Marshal implements Codec.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements Codec.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	// Keep sub-second precision and the zone offset of timestamps.
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR is the deterministic CBOR codec.
type CBOR struct{}

// Name implements Codec.
func (CBOR) Name() string { return NameCBOR }

// Marshal implements Codec.
func (CBOR) Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

// Unmarshal implements Codec.
func (CBOR) Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }
