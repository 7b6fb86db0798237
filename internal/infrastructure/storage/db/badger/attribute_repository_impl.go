package dbbadger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/idwallet/lwsd/internal/core/domain"
)

// attribute and document are stored as separate records so that listing
// attributes does not load every document buffer.
type attribute struct {
	ID       string
	WalletID string
	TypeURL  string
	Name     string
	Data     json.RawMessage
}

type document struct {
	Key         string
	ID          string
	AttributeID string
	Name        string
	MimeType    string
	Size        int64
	Buffer      []byte
	Fields      map[string]interface{}
}

func documentKey(attributeID, documentID string) string {
	return fmt.Sprintf("%s/%s", attributeID, documentID)
}

type attributeRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAttributeRepositoryImpl returns a badger implementation of
// domain.AttributeRepository.
func NewAttributeRepositoryImpl(
	store *badgerhold.Store,
) domain.AttributeRepository {
	return attributeRepositoryImpl{store}
}

func (r attributeRepositoryImpl) AddAttributeType(
	_ context.Context, attributeType domain.AttributeType,
) error {
	if err := attributeType.Validate(); err != nil {
		return err
	}
	if len(attributeType.ID) <= 0 {
		attributeType.ID = uuid.New().String()
	}

	if err := r.store.Insert(attributeType.URL, &attributeType); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrAttributeTypeAlreadyExists
		}
		return err
	}
	return nil
}

func (r attributeRepositoryImpl) GetAttributeType(
	_ context.Context, url string,
) (*domain.AttributeType, error) {
	var attributeType domain.AttributeType
	if err := r.store.Get(url, &attributeType); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAttributeTypeNotFound
		}
		return nil, err
	}
	return &attributeType, nil
}

func (r attributeRepositoryImpl) AddAttribute(
	ctx context.Context, attr domain.Attribute,
) error {
	if _, err := r.GetAttributeType(ctx, attr.TypeURL); err != nil {
		return err
	}
	if len(attr.ID) <= 0 {
		attr.ID = uuid.New().String()
	}

	record := attribute{
		ID:       attr.ID,
		WalletID: attr.WalletID,
		TypeURL:  attr.TypeURL,
		Name:     attr.Name,
		Data:     attr.Data,
	}

	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if err := r.store.TxInsert(tx, record.ID, &record); err != nil {
			return err
		}
		for _, d := range attr.Documents {
			if len(d.ID) <= 0 {
				d.ID = uuid.New().String()
			}
			doc := document{
				Key:         documentKey(attr.ID, d.ID),
				ID:          d.ID,
				AttributeID: attr.ID,
				Name:        d.Name,
				MimeType:    d.MimeType,
				Size:        d.Size,
				Buffer:      d.Buffer,
				Fields:      d.Fields,
			}
			if err := r.store.TxInsert(tx, doc.Key, &doc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r attributeRepositoryImpl) DeleteAttribute(
	_ context.Context, id string,
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		if err := r.store.TxDelete(tx, id, attribute{}); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrAttributeNotFound
			}
			return err
		}
		return r.store.TxDeleteMatching(
			tx, &document{}, badgerhold.Where("AttributeID").Eq(id),
		)
	})
}

func (r attributeRepositoryImpl) FindByWalletID(
	ctx context.Context, walletID string,
) ([]domain.Attribute, error) {
	return r.findAttributes(ctx, badgerhold.Where("WalletID").Eq(walletID))
}

func (r attributeRepositoryImpl) FindByTypeURLs(
	ctx context.Context, walletID string, urls []string,
) ([]domain.Attribute, error) {
	if len(urls) <= 0 {
		return make([]domain.Attribute, 0), nil
	}

	values := make([]interface{}, 0, len(urls))
	for _, u := range urls {
		values = append(values, u)
	}
	query := badgerhold.Where("WalletID").Eq(walletID).
		And("TypeURL").In(values...)

	return r.findAttributes(ctx, query)
}

func (r attributeRepositoryImpl) findAttributes(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Attribute, error) {
	var records []attribute
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}

	attributes := make([]domain.Attribute, 0, len(records))
	types := make(map[string]*domain.AttributeType)
	for _, rec := range records {
		attributeType, ok := types[rec.TypeURL]
		if !ok {
			t, err := r.GetAttributeType(ctx, rec.TypeURL)
			if err != nil {
				return nil, err
			}
			attributeType = t
			types[rec.TypeURL] = t
		}

		documents, err := r.findDocuments(rec.ID)
		if err != nil {
			return nil, err
		}

		attributes = append(attributes, domain.Attribute{
			ID:        rec.ID,
			WalletID:  rec.WalletID,
			TypeURL:   rec.TypeURL,
			Name:      rec.Name,
			Data:      rec.Data,
			Documents: documents,
			Type:      attributeType,
		})
	}
	return attributes, nil
}

func (r attributeRepositoryImpl) findDocuments(
	attributeID string,
) ([]domain.Document, error) {
	var records []document
	if err := r.store.Find(
		&records, badgerhold.Where("AttributeID").Eq(attributeID).SortBy("ID"),
	); err != nil {
		return nil, err
	}

	documents := make([]domain.Document, 0, len(records))
	for _, d := range records {
		documents = append(documents, domain.Document{
			ID:          d.ID,
			AttributeID: d.AttributeID,
			Name:        d.Name,
			MimeType:    d.MimeType,
			Size:        d.Size,
			Buffer:      d.Buffer,
			Fields:      d.Fields,
		})
	}
	return documents, nil
}
