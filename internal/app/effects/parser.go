package effects

import (
	"strings"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

// ResultParser derives extra state fields from a publish result. Its output
// is applied to the prior state as an RFC 7386 merge patch together with the
// default fields: a nil value removes the key, a nested object is merged key
// by key into the prior object, and any other value replaces it.
type ResultParser func(result domain.PublishResult) map[string]any

// ParsePublish extracts the published package, its upgrade capability,
// publisher objects, and any other created objects from a publish response.
func ParsePublish(resp domain.TransactionResponse) domain.PublishResult {
	result := domain.PublishResult{
		PublisherIDs: []string{},
		Created:      []domain.CreatedObject{},
		Digest:       resp.Digest,
	}

	for _, change := range resp.ObjectChanges {
		switch {
		case change.Type == domain.ChangeCreated && strings.HasSuffix(change.ObjectType, domain.UpgradeCapTypeSuffix):
			result.UpgradeCapID = change.ObjectID
		case change.Type == domain.ChangeCreated && strings.HasSuffix(change.ObjectType, domain.PublisherTypeSuffix):
			result.PublisherIDs = append(result.PublisherIDs, change.ObjectID)
		case change.Type == domain.ChangePublished:
			result.PackageID = change.PackageID
		case change.Type == domain.ChangeCreated:
			result.Created = append(result.Created, createdObject(change))
		}
	}
	return result
}

// ParseUpgrade extracts the new package id and the upgrade capability, which
// an upgrade reports as mutated rather than created.
func ParseUpgrade(resp domain.TransactionResponse) domain.UpgradeResult {
	result := domain.UpgradeResult{Digest: resp.Digest}
	for _, change := range resp.ObjectChanges {
		switch {
		case change.Type == domain.ChangePublished:
			result.PackageID = change.PackageID
		case strings.HasSuffix(change.ObjectType, domain.UpgradeCapTypeSuffix):
			result.UpgradeCapID = change.ObjectID
		}
	}
	return result
}

func createdObject(change domain.ObjectChange) domain.CreatedObject {
	created := domain.CreatedObject{
		Type:     change.ObjectType,
		ObjectID: change.ObjectID,
	}
	if change.Owner != nil {
		created.Owner = domain.ClassifyOwner(*change.Owner, change.Sender)
		if change.Owner.Kind == domain.OwnerAddress || change.Owner.Kind == domain.OwnerObject {
			created.OwnerRef = change.Owner.Ref
		}
	}
	return created
}

// CaptureByType returns a parser that stores, under each field name, the id
// of the first created object of the given type. A type starting with 0x is
// matched as written; otherwise it is relative to the published package, so
// "house_data::HouseCap" matches "<packageId>::house_data::HouseCap".
// Fields without a matching object are left out.
func CaptureByType(fields map[string]string) ResultParser {
	captured := make(map[string]string, len(fields))
	for field, objectType := range fields {
		captured[field] = strings.TrimSpace(objectType)
	}

	return func(result domain.PublishResult) map[string]any {
		out := map[string]any{}
		for field, objectType := range captured {
			if !strings.HasPrefix(objectType, "0x") {
				objectType = result.PackageID + "::" + objectType
			}
			if created, ok := result.FindCreated(objectType); ok {
				out[field] = created.ObjectID
			}
		}
		return out
	}
}

// Chain runs parsers in order. Later parsers win on conflicting fields.
func Chain(parsers ...ResultParser) ResultParser {
	return func(result domain.PublishResult) map[string]any {
		out := map[string]any{}
		for _, parser := range parsers {
			if parser == nil {
				continue
			}
			for key, value := range parser(result) {
				out[key] = value
			}
		}
		return out
	}
}
