package interchange

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding so the same document always
// produces the same bytes.
var encMode cbor.EncMode

// decMode rejects unknown map keys, mirroring the strict YAML decoder.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("interchange: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic("interchange: CBOR decoder initialization failed: " + err.Error())
	}
}

func MarshalCBOR(d Document) ([]byte, error) {
	b, err := encMode.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("interchange: encode cbor: %w", err)
	}
	return b, nil
}

func UnmarshalCBOR(data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, ErrEmptyDocument
	}
	var d Document
	if err := decMode.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("interchange: decode cbor: %w", err)
	}
	return d, nil
}
