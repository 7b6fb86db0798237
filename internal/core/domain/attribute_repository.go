package domain

import "context"

// AttributeRepository is the abstraction for any kind of database intended
// to persist attribute types, attributes and their documents.
type AttributeRepository interface {
	// AddAttributeType adds a new attribute type. ErrAttributeTypeAlreadyExists
	// is returned if one with the same URL exists.
	AddAttributeType(ctx context.Context, attributeType AttributeType) error
	// GetAttributeType returns the attribute type with the given URL.
	GetAttributeType(ctx context.Context, url string) (*AttributeType, error)
	// AddAttribute adds a new attribute together with its documents.
	AddAttribute(ctx context.Context, attribute Attribute) error
	// DeleteAttribute deletes an attribute and all its documents.
	DeleteAttribute(ctx context.Context, id string) error
	// FindByWalletID returns all attributes of a wallet, documents and type
	// included.
	FindByWalletID(ctx context.Context, walletID string) ([]Attribute, error)
	// FindByTypeURLs returns the attributes of a wallet whose type URL is one
	// of the given ones, documents and type included.
	FindByTypeURLs(
		ctx context.Context, walletID string, urls []string,
	) ([]Attribute, error)
}
