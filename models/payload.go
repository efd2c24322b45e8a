package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrPayloadEventMismatch = errors.New("deferred payload belongs to another event")
	ErrPayloadEmpty         = errors.New("deferred payload is empty")
)

var validate = validator.New()

// CartOptions are the per-item cart options. Pointers keep "not supplied"
// apart from an explicit zero.
type CartOptions struct {
	PriceID  *int `json:"price_id,omitempty" validate:"omitempty,gte=0"`
	Quantity *int `json:"quantity,omitempty" validate:"omitempty,gte=0"`
}

// CartItemPayload is stored for added_to_cart and removed_from_cart.
type CartItemPayload struct {
	DownloadID int64       `json:"download_id" validate:"required,gt=0"`
	Options    CartOptions `json:"options"`
}

// PurchasePayload is stored for completed_purchase.
type PurchasePayload struct {
	PaymentID int64 `json:"payment_id" validate:"required,gt=0"`
}

type payloadEnvelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodePayload validates v and wraps it in an envelope tagged with name.
func EncodePayload(name EventName, v any) ([]byte, error) {
	if err := validate.Struct(v); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", name, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return json.Marshal(payloadEnvelope{Event: name, Data: data})
}

// DecodePayload unwraps raw into out, rejecting envelopes tagged with a
// different event name and payloads that fail validation.
func DecodePayload(name EventName, raw []byte, out any) error {
	if len(raw) == 0 {
		return ErrPayloadEmpty
	}
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s envelope: %w", name, err)
	}
	if env.Event != name {
		return fmt.Errorf("%w: got %q, want %q", ErrPayloadEventMismatch, env.Event, name)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", name, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s payload: %w", name, err)
	}
	return nil
}
