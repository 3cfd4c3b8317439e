package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "autofleet/internal/domain/booking"
	domainlocation "autofleet/internal/domain/location"
	domainrange "autofleet/internal/domain/shared/daterange"
	domainuser "autofleet/internal/domain/user"
	domainvehicle "autofleet/internal/domain/vehicle"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("bookings")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "status", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, params domainbooking.ListParams) ([]*domainbooking.Booking, int, error) {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = string(params.UserID)
	}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if params.Offset > 0 {
		opts = opts.SetSkip(int64(params.Offset))
	}
	if params.Limit > 0 {
		opts = opts.SetLimit(int64(params.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

func (r *BookingRepository) FindHolds(ctx context.Context, vehicleID domainvehicle.VehicleID, statuses []domainbooking.Status, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	set := make([]string, 0, len(statuses))
	for _, s := range statuses {
		set = append(set, string(s))
	}
	filter := bson.M{
		"vehicle_id": string(vehicleID),
		"status":     bson.M{"$in": set},
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
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

type bookingDocument struct {
	ID                string `bson:"_id"`
	UserID            string `bson:"user_id"`
	VehicleID         string `bson:"vehicle_id"`
	StartDate         int64  `bson:"start_date"`
	EndDate           int64  `bson:"end_date"`
	PickupLocationID  string `bson:"pickup_location_id"`
	DropoffLocationID string `bson:"dropoff_location_id"`
	TotalCostCents    int64  `bson:"total_cost_cents"`
	Status            string `bson:"status"`
	CreatedAt         int64  `bson:"created_at"`
	UpdatedAt         int64  `bson:"updated_at"`
	Version           int64  `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:                string(b.ID),
		UserID:            string(b.UserID),
		VehicleID:         string(b.VehicleID),
		StartDate:         b.Range.Start.UnixMilli(),
		EndDate:           b.Range.End.UnixMilli(),
		PickupLocationID:  string(b.PickupLocationID),
		DropoffLocationID: string(b.DropoffLocationID),
		TotalCostCents:    b.TotalCostCents,
		Status:            string(b.Status),
		CreatedAt:         b.CreatedAt.UnixMilli(),
		UpdatedAt:         b.UpdatedAt.UnixMilli(),
		Version:           b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:                domainbooking.BookingID(d.ID),
		UserID:            domainuser.ID(d.UserID),
		VehicleID:         domainvehicle.VehicleID(d.VehicleID),
		Range:             domainrange.DateRange{Start: timestampToTime(d.StartDate), End: timestampToTime(d.EndDate)},
		PickupLocationID:  domainlocation.LocationID(d.PickupLocationID),
		DropoffLocationID: domainlocation.LocationID(d.DropoffLocationID),
		TotalCostCents:    d.TotalCostCents,
		Status:            domainbooking.Status(d.Status),
		CreatedAt:         timestampToTime(d.CreatedAt),
		UpdatedAt:         timestampToTime(d.UpdatedAt),
		Version:           d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
