package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlocation "autofleet/internal/domain/location"
)

type LocationRepository struct {
	col *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{col: db.Collection("locations")}
}

func (r *LocationRepository) ByID(ctx context.Context, id domainlocation.LocationID) (*domainlocation.Location, error) {
	var doc locationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlocation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *LocationRepository) Save(ctx context.Context, l *domainlocation.Location) error {
	doc := newLocationDocument(l)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *LocationRepository) Delete(ctx context.Context, id domainlocation.LocationID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlocation.ErrNotFound
	}
	return nil
}

func (r *LocationRepository) List(ctx context.Context) ([]*domainlocation.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domainlocation.Location
	for cursor.Next(ctx) {
		var doc locationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type locationDocument struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Address   string `bson:"address"`
	City      string `bson:"city"`
	Country   string `bson:"country"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newLocationDocument(l *domainlocation.Location) locationDocument {
	return locationDocument{
		ID:        string(l.ID),
		Name:      l.Name,
		Address:   l.Address,
		City:      l.City,
		Country:   l.Country,
		CreatedAt: l.CreatedAt.UnixMilli(),
		UpdatedAt: l.UpdatedAt.UnixMilli(),
	}
}

func (d locationDocument) toAggregate() *domainlocation.Location {
	return &domainlocation.Location{
		ID:        domainlocation.LocationID(d.ID),
		Name:      d.Name,
		Address:   d.Address,
		City:      d.City,
		Country:   d.Country,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
