package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/idwallet/lwsd/internal/core/domain"
)

// AttributeRepositoryImpl represents an in memory storage
type AttributeRepositoryImpl struct {
	types      map[string]domain.AttributeType
	attributes map[string]domain.Attribute

	lock *sync.RWMutex
}

// NewAttributeRepositoryImpl returns a new empty AttributeRepositoryImpl
func NewAttributeRepositoryImpl() *AttributeRepositoryImpl {
	return &AttributeRepositoryImpl{
		types:      map[string]domain.AttributeType{},
		attributes: map[string]domain.Attribute{},
		lock:       &sync.RWMutex{},
	}
}

func (r *AttributeRepositoryImpl) AddAttributeType(
	_ context.Context, attributeType domain.AttributeType,
) error {
	if err := attributeType.Validate(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.types[attributeType.URL]; ok {
		return domain.ErrAttributeTypeAlreadyExists
	}
	if len(attributeType.ID) <= 0 {
		attributeType.ID = uuid.New().String()
	}
	r.types[attributeType.URL] = attributeType
	return nil
}

func (r *AttributeRepositoryImpl) GetAttributeType(
	_ context.Context, url string,
) (*domain.AttributeType, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	t, ok := r.types[url]
	if !ok {
		return nil, domain.ErrAttributeTypeNotFound
	}
	return &t, nil
}

func (r *AttributeRepositoryImpl) AddAttribute(
	_ context.Context, attr domain.Attribute,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.types[attr.TypeURL]; !ok {
		return domain.ErrAttributeTypeNotFound
	}
	if len(attr.ID) <= 0 {
		attr.ID = uuid.New().String()
	}

	documents := make([]domain.Document, 0, len(attr.Documents))
	for _, d := range attr.Documents {
		if len(d.ID) <= 0 {
			d.ID = uuid.New().String()
		}
		d.AttributeID = attr.ID
		documents = append(documents, d)
	}
	attr.Documents = documents
	attr.Type = nil

	r.attributes[attr.ID] = attr
	return nil
}

func (r *AttributeRepositoryImpl) DeleteAttribute(
	_ context.Context, id string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.attributes[id]; !ok {
		return domain.ErrAttributeNotFound
	}
	delete(r.attributes, id)
	return nil
}

func (r *AttributeRepositoryImpl) FindByWalletID(
	_ context.Context, walletID string,
) ([]domain.Attribute, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.findAttributes(func(a domain.Attribute) bool {
		return a.WalletID == walletID
	}), nil
}

func (r *AttributeRepositoryImpl) FindByTypeURLs(
	_ context.Context, walletID string, urls []string,
) ([]domain.Attribute, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	wanted := make(map[string]bool, len(urls))
	for _, u := range urls {
		wanted[u] = true
	}
	return r.findAttributes(func(a domain.Attribute) bool {
		return a.WalletID == walletID && wanted[a.TypeURL]
	}), nil
}

func (r *AttributeRepositoryImpl) findAttributes(
	filter func(domain.Attribute) bool,
) []domain.Attribute {
	attributes := make([]domain.Attribute, 0)
	for _, a := range r.attributes {
		if !filter(a) {
			continue
		}
		t := r.types[a.TypeURL]
		a.Type = &t
		attributes = append(attributes, a)
	}
	sort.SliceStable(attributes, func(i, j int) bool {
		return attributes[i].ID < attributes[j].ID
	})
	return attributes
}
