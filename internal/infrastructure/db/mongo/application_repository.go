package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const applicationsCollection = "applications"

// ApplicationRepository implements ports.ApplicationRepository on MongoDB.
type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection(applicationsCollection)}
}

// Create inserts a new application. A concurrent duplicate for the same
// (shift_ref, applicant_id) pair loses on the unique compound index.
func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateApplication
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// FindByRef retrieves an application by its public reference.
func (r *ApplicationRepository) FindByRef(ctx context.Context, ref string) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"ref": ref})
}

// FindByShiftAndApplicant locates an existing application for the pair.
func (r *ApplicationRepository) FindByShiftAndApplicant(ctx context.Context, shiftRef string, applicantID int64) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"shift_ref": shiftRef, "applicant_id": applicantID})
}

func (r *ApplicationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Application, error) {
	var a domain.Application
	if err := r.col.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &a, nil
}

// UpdateStatus atomically moves the application from one status to another
// and appends the decision entry. The match is conditioned on the current
// status, so of two concurrent decisions exactly one finds a document to
// update; the other learns it lost the race.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, ref string, from, to domain.ApplicationStatus, entry domain.DecisionEntry) (*domain.Application, error) {
	filter := bson.M{"ref": ref, "status": from}
	update := bson.M{
		"$set":  bson.M{"status": to, "updated_at": entry.Timestamp},
		"$push": bson.M{"decisions": entry},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a domain.Application
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	// Nothing matched (ref, from). Distinguish a vanished application from a
	// lost race on the status.
	if _, ferr := r.FindByRef(ctx, ref); ferr != nil {
		return nil, ferr
	}
	return nil, domain.ErrInvalidTransition
}

// List returns one page of applications matching filter, newest first, plus
// the total match count.
func (r *ApplicationRepository) List(ctx context.Context, f ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	filter := bson.M{}
	if f.ShiftRef != "" {
		filter["shift_ref"] = f.ShiftRef
	}
	if f.OwnerID != 0 {
		filter["shift_owner_id"] = f.OwnerID
	}
	if f.ApplicantID != 0 {
		filter["applicant_id"] = f.ApplicantID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer cur.Close(ctx)

	apps := make([]*domain.Application, 0, f.Limit)
	for cur.Next(ctx) {
		var a domain.Application
		if err := cur.Decode(&a); err != nil {
			return nil, 0, fmt.Errorf("decode application: %w", err)
		}
		apps = append(apps, &a)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, total, nil
}

// EnsureIndexes creates the indexes application queries depend on. The
// unique compound index is what rejects duplicate bids under concurrency.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ref", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "shift_ref", Value: 1}, {Key: "applicant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "shift_owner_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "applicant_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
