package mongodb

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// ItemCodec serialises items with the same document layout used in the
// items collection, so cached entries and stored ones never drift apart.
type ItemCodec struct{}

func (ItemCodec) Marshal(item *domain.Item) ([]byte, error) {
	return bson.Marshal(fromDomainItem(item))
}

func (ItemCodec) Unmarshal(data []byte) (*domain.Item, error) {
	var doc itemDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}
