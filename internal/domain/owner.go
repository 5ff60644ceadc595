package domain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

type OwnerKind int

const (
	OwnerUnknown OwnerKind = iota
	OwnerAddress
	OwnerObject
	OwnerShared
	OwnerImmutable
)

var ErrUnknownOwner = errors.New("unrecognized owner shape")

// Owner is the ownership of an object as reported by the ledger. Ref holds
// the owning address or object id for OwnerAddress and OwnerObject.
type Owner struct {
	Kind OwnerKind
	Ref  string
}

func AddressOwner(addr string) Owner { return Owner{Kind: OwnerAddress, Ref: addr} }
func ObjectOwner(id string) Owner    { return Owner{Kind: OwnerObject, Ref: id} }
func SharedOwner() Owner             { return Owner{Kind: OwnerShared} }
func ImmutableOwner() Owner          { return Owner{Kind: OwnerImmutable} }

func (o *Owner) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return fmt.Errorf("decode owner: %w", err)
		}
		if tag != "Immutable" {
			return fmt.Errorf("%w: %q", ErrUnknownOwner, tag)
		}
		*o = ImmutableOwner()
		return nil
	}

	var shape map[string]jsontext.Value
	if err := json.Unmarshal(data, &shape); err != nil {
		return fmt.Errorf("decode owner: %w", err)
	}
	if len(shape) != 1 {
		return fmt.Errorf("%w: %s", ErrUnknownOwner, data)
	}

	for key, raw := range shape {
		switch key {
		case "AddressOwner", "ObjectOwner":
			var ref string
			if err := json.Unmarshal(raw, &ref); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			if key == "AddressOwner" {
				*o = AddressOwner(ref)
			} else {
				*o = ObjectOwner(ref)
			}
		case "Shared":
			*o = SharedOwner()
		default:
			return fmt.Errorf("%w: %s", ErrUnknownOwner, key)
		}
	}
	return nil
}

func (o Owner) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OwnerAddress:
		return json.Marshal(map[string]string{"AddressOwner": o.Ref})
	case OwnerObject:
		return json.Marshal(map[string]string{"ObjectOwner": o.Ref})
	case OwnerShared:
		return json.Marshal(map[string]map[string]any{"Shared": {}})
	case OwnerImmutable:
		return json.Marshal("Immutable")
	default:
		return nil, ErrUnknownOwner
	}
}

// OwnerClass is the ownership of a created object relative to the sender of
// the transaction that created it.
type OwnerClass string

const (
	OwnerClassSelf      OwnerClass = "self-owned"
	OwnerClassAddress   OwnerClass = "other-address-owned"
	OwnerClassObject    OwnerClass = "object-owned"
	OwnerClassShared    OwnerClass = "shared"
	OwnerClassImmutable OwnerClass = "immutable"
)

func ClassifyOwner(owner Owner, sender string) OwnerClass {
	switch owner.Kind {
	case OwnerAddress:
		if owner.Ref == sender {
			return OwnerClassSelf
		}
		return OwnerClassAddress
	case OwnerObject:
		return OwnerClassObject
	case OwnerShared:
		return OwnerClassShared
	case OwnerImmutable:
		return OwnerClassImmutable
	default:
		return ""
	}
}
