package records

import (
	"context"
	"sync"

	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	recordRepositoryInstance contracts.RecordRepository
	onceRecordRepository     sync.Once
)

// RecordMongoRepository persists the optimistic record collection so local
// state, including unsynced and failed records, survives a restart. Record
// ids are generated by the service, so _id is the plain string id.
type RecordMongoRepository struct {
	Collection *mongo.Collection
}

func NewRecordMongoRepository(db *mongo.Database) contracts.RecordRepository {
	onceRecordRepository.Do(func() {
		recordRepositoryInstance = &RecordMongoRepository{
			Collection: db.Collection(constvars.MongoCollectionPaymentRecords),
		}
	})
	return recordRepositoryInstance
}

func (r *RecordMongoRepository) FindAll(ctx context.Context) ([]models.PaymentRecord, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var records []models.PaymentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, exceptions.ErrMongoDBIterateCursor(err)
	}
	return records, nil
}

func (r *RecordMongoRepository) Upsert(ctx context.Context, record *models.PaymentRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *RecordMongoRepository) DeleteByID(ctx context.Context, recordID string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": recordID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}
