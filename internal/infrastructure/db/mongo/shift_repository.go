package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const shiftsCollection = "shifts"

// ShiftRepository implements ports.ShiftRepository on MongoDB.
type ShiftRepository struct {
	col *mongo.Collection
}

func NewShiftRepository(db *mongo.Database) *ShiftRepository {
	return &ShiftRepository{col: db.Collection(shiftsCollection)}
}

// Create inserts a new shift document.
func (r *ShiftRepository) Create(ctx context.Context, s *domain.Shift) error {
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

// FindByRef retrieves a shift by its public reference.
func (r *ShiftRepository) FindByRef(ctx context.Context, ref string) (*domain.Shift, error) {
	var s domain.Shift
	if err := r.col.FindOne(ctx, bson.M{"ref": ref}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShiftNotFound
		}
		return nil, fmt.Errorf("find shift: %w", err)
	}
	return &s, nil
}

// Update replaces the mutable fields of the shift identified by s.Ref.
func (r *ShiftRepository) Update(ctx context.Context, s *domain.Shift) error {
	update := bson.M{"$set": bson.M{
		"title":       s.Title,
		"location":    s.Location,
		"hourly_rate": s.HourlyRate,
		"starts_at":   s.StartsAt,
		"ends_at":     s.EndsAt,
		"open":        s.Open,
		"updated_at":  s.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"ref": s.Ref}, update)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrShiftNotFound
	}
	return nil
}

// List returns one page of shifts matching filter, soonest start first, plus
// the total match count.
func (r *ShiftRepository) List(ctx context.Context, f ports.ListShiftsFilter) ([]*domain.Shift, int64, error) {
	filter := shiftFilter(f)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count shifts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "starts_at", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list shifts: %w", err)
	}
	defer cur.Close(ctx)

	shifts := make([]*domain.Shift, 0, f.Limit)
	for cur.Next(ctx) {
		var s domain.Shift
		if err := cur.Decode(&s); err != nil {
			return nil, 0, fmt.Errorf("decode shift: %w", err)
		}
		shifts = append(shifts, &s)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate shifts: %w", err)
	}
	return shifts, total, nil
}

func shiftFilter(f ports.ListShiftsFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != 0 {
		filter["owner_id"] = f.OwnerID
	}
	if f.Open != nil {
		filter["open"] = *f.Open
	}
	if f.Location != "" {
		filter["location"] = f.Location
	}
	if f.Search != "" {
		// Search input is quoted; it is a substring match, not a user-supplied regex.
		quoted := regexp.QuoteMeta(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": quoted, "$options": "i"}},
			bson.M{"location": bson.M{"$regex": quoted, "$options": "i"}},
		}
	}

	startsAt := bson.M{}
	if !f.From.IsZero() {
		startsAt["$gte"] = f.From
	}
	if !f.To.IsZero() {
		startsAt["$lte"] = f.To
	}
	if len(startsAt) > 0 {
		filter["starts_at"] = startsAt
	}
	return filter
}

// EnsureIndexes creates the indexes the shift queries depend on.
func (r *ShiftRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ref", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "open", Value: 1}, {Key: "starts_at", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
