package domain

import "strings"

const (
	UpgradeCapTypeSuffix = "package::UpgradeCap"
	PublisherTypeSuffix  = "package::Publisher"
)

type CreatedObject struct {
	Type     string     `json:"type"`
	ObjectID string     `json:"objectId"`
	Owner    OwnerClass `json:"owner"`
	OwnerRef string     `json:"ownerRef,omitempty"`
}

type PublishResult struct {
	PackageID    string          `json:"packageId"`
	UpgradeCapID string          `json:"upgradeCapId"`
	PublisherIDs []string        `json:"publisherIds"`
	Created      []CreatedObject `json:"created"`
	Digest       string          `json:"digest,omitempty"`
}

func (r PublishResult) IsEmpty() bool {
	return r.PackageID == "" && r.UpgradeCapID == "" && len(r.PublisherIDs) == 0 && len(r.Created) == 0
}

// FindCreated returns the first created object whose type equals objectType.
func (r PublishResult) FindCreated(objectType string) (CreatedObject, bool) {
	for _, created := range r.Created {
		if created.Type == objectType {
			return created, true
		}
	}
	return CreatedObject{}, false
}

type UpgradeResult struct {
	PackageID    string `json:"packageId"`
	UpgradeCapID string `json:"upgradeCapId"`
	Digest       string `json:"digest,omitempty"`
}

func (r UpgradeResult) IsEmpty() bool {
	return r.PackageID == "" && r.UpgradeCapID == ""
}

const (
	StateKeyPackageID    = "packageId"
	StateKeyUpgradeCapID = "upgradeCapId"
	StateKeyPublisherIDs = "publisherIds"
)

// PublishState is the persisted record of the last deployment of a package
// to one network.
type PublishState map[string]any

func (s PublishState) PackageID() string {
	return s.stringField(StateKeyPackageID)
}

func (s PublishState) UpgradeCapID() string {
	return s.stringField(StateKeyUpgradeCapID)
}

func (s PublishState) stringField(key string) string {
	value, ok := s[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// DefaultPublishState holds the fields every successful publish persists.
func DefaultPublishState(result PublishResult) PublishState {
	publishers := result.PublisherIDs
	if publishers == nil {
		publishers = []string{}
	}
	ids := make([]any, 0, len(publishers))
	for _, id := range publishers {
		ids = append(ids, id)
	}
	return PublishState{
		StateKeyPackageID:    result.PackageID,
		StateKeyUpgradeCapID: result.UpgradeCapID,
		StateKeyPublisherIDs: ids,
	}
}
