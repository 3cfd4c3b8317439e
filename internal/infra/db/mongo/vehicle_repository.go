package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainvehicle "autofleet/internal/domain/vehicle"
)

type VehicleRepository struct {
	col *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{col: db.Collection("vehicles")}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.VehicleID) (*domainvehicle.Vehicle, error) {
	var doc vehicleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvehicle.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VehicleRepository) Save(ctx context.Context, v *domainvehicle.Vehicle) error {
	doc := newVehicleDocument(v)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *VehicleRepository) Delete(ctx context.Context, id domainvehicle.VehicleID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainvehicle.ErrNotFound
	}
	return nil
}

func (r *VehicleRepository) List(ctx context.Context, params domainvehicle.ListParams) ([]*domainvehicle.Vehicle, int, error) {
	filter := bson.M{}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.Label != "" {
		filter["availability_label"] = string(params.Label)
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		pattern := bson.M{"$regex": q, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"make": pattern},
			bson.M{"model": pattern},
			bson.M{"plate": pattern},
		}
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "make", Value: 1}, {Key: "model", Value: 1}})
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

	var items []*domainvehicle.Vehicle
	for cursor.Next(ctx) {
		var doc vehicleDocument
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

type vehicleDocument struct {
	ID             string `bson:"_id"`
	Make           string `bson:"make"`
	Model          string `bson:"model"`
	Year           int    `bson:"year"`
	Plate          string `bson:"plate"`
	Category       string `bson:"category"`
	Seats          int    `bson:"seats"`
	Transmission   string `bson:"transmission"`
	DailyRateCents int64  `bson:"daily_rate_cents"`
	Label          string `bson:"availability_label"`
	ImageURL       string `bson:"image_url"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
}

func newVehicleDocument(v *domainvehicle.Vehicle) vehicleDocument {
	return vehicleDocument{
		ID:             string(v.ID),
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Plate:          v.Plate,
		Category:       v.Category,
		Seats:          v.Seats,
		Transmission:   v.Transmission,
		DailyRateCents: v.DailyRateCents,
		Label:          string(v.Label),
		ImageURL:       v.ImageURL,
		CreatedAt:      v.CreatedAt.UnixMilli(),
		UpdatedAt:      v.UpdatedAt.UnixMilli(),
	}
}

func (d vehicleDocument) toAggregate() *domainvehicle.Vehicle {
	return &domainvehicle.Vehicle{
		ID:             domainvehicle.VehicleID(d.ID),
		Make:           d.Make,
		Model:          d.Model,
		Year:           d.Year,
		Plate:          d.Plate,
		Category:       d.Category,
		Seats:          d.Seats,
		Transmission:   d.Transmission,
		DailyRateCents: d.DailyRateCents,
		Label:          domainvehicle.AvailabilityLabel(d.Label),
		ImageURL:       d.ImageURL,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
}
