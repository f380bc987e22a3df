package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

const collectionRequests = "requests"

// RequestRepository stores each visit request as one document with its
// guests embedded, so a request and its guests are written and deleted
// together.
type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

type guestDoc struct {
	ID          string `bson:"id"`
	FullName    string `bson:"full_name"`
	Email       string `bson:"email"`
	PhoneNumber string `bson:"phone_number"`
	IsForeign   bool   `bson:"is_foreign"`
	VisitStatus string `bson:"visit_status"`
}

type appellantDoc struct {
	ID       string `bson:"_id"`
	FullName string `bson:"full_name"`
	Email    string `bson:"email"`
}

type requestDoc struct {
	ID                 string        `bson:"_id"`
	Purpose            string        `bson:"purpose"`
	Place              string        `bson:"place"`
	VisitAt            time.Time     `bson:"visit_at"`
	Comment            string        `bson:"comment,omitempty"`
	AppellantID        string        `bson:"appellant_id"`
	ConfirmingID       string        `bson:"confirming_id,omitempty"`
	Status             string        `bson:"status"`
	CredentialLocation string        `bson:"credential_location,omitempty"`
	Guests             []guestDoc    `bson:"guests"`
	CreatedAt          time.Time     `bson:"created_at"`
	ReviewedAt         *time.Time    `bson:"reviewed_at,omitempty"`
	Appellant          *appellantDoc `bson:"appellant,omitempty"`
}

func newRequestDoc(r *domain.VisitRequest) requestDoc {
	guests := make([]guestDoc, 0, len(r.Guests))
	for _, g := range r.Guests {
		guests = append(guests, guestDoc{
			ID:          g.ID,
			FullName:    g.FullName,
			Email:       g.Email,
			PhoneNumber: g.PhoneNumber,
			IsForeign:   g.IsForeign,
			VisitStatus: string(g.VisitStatus),
		})
	}
	return requestDoc{
		ID:                 r.ID,
		Purpose:            r.Purpose,
		Place:              r.Place,
		VisitAt:            r.VisitAt,
		Comment:            r.Comment,
		AppellantID:        r.AppellantID,
		ConfirmingID:       r.ConfirmingID,
		Status:             string(r.Status),
		CredentialLocation: r.CredentialLocation,
		Guests:             guests,
		CreatedAt:          r.CreatedAt,
		ReviewedAt:         r.ReviewedAt,
	}
}

func (d requestDoc) toDomain() *domain.VisitRequest {
	guests := make([]domain.Guest, 0, len(d.Guests))
	for _, g := range d.Guests {
		guests = append(guests, domain.Guest{
			ID:          g.ID,
			FullName:    g.FullName,
			Email:       g.Email,
			PhoneNumber: g.PhoneNumber,
			IsForeign:   g.IsForeign,
			VisitStatus: domain.GuestVisitStatus(g.VisitStatus),
		})
	}
	r := &domain.VisitRequest{
		ID:                 d.ID,
		Purpose:            d.Purpose,
		Place:              d.Place,
		VisitAt:            d.VisitAt.UTC(),
		Comment:            d.Comment,
		AppellantID:        d.AppellantID,
		ConfirmingID:       d.ConfirmingID,
		Status:             domain.RequestStatus(d.Status),
		CredentialLocation: d.CredentialLocation,
		Guests:             guests,
		CreatedAt:          d.CreatedAt.UTC(),
		ReviewedAt:         d.ReviewedAt,
	}
	if d.Appellant != nil {
		r.Appellant = &domain.UserRef{ID: d.Appellant.ID, FullName: d.Appellant.FullName, Email: d.Appellant.Email}
	}
	return r
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.VisitRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newRequestDoc(req)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: request %s already exists", domain.ErrConflict, req.ID)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.VisitRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}, appellantLookup()...)
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("find request: %w", err)
		}
		return nil, domain.ErrRequestNotFound
	}
	var doc requestDoc
	if err := cur.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return doc.toDomain(), nil
}

// Transition applies a review only if the stored status still equals
// u.From. The status predicate in the filter is the compare-and-swap.
func (r *RequestRepository) Transition(ctx context.Context, id string, u ports.ReviewUpdate) (*domain.VisitRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":        string(u.To),
		"confirming_id": u.ConfirmingID,
		"reviewed_at":   u.At,
	}
	if u.Comment != "" {
		set["comment"] = u.Comment
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc requestDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": string(u.From)}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("review request: %w", err)
	}
	return nil, r.missOrConflict(ctx, bson.M{"_id": id}, "request is no longer "+string(u.From))
}

func (r *RequestRepository) SetCredentialLocation(ctx context.Context, id, location string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"credential_location": location}})
	if err != nil {
		return fmt.Errorf("set credential location: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// SetGuestVisitStatus moves one embedded guest from -> to. The positional
// update only matches while the guest is still in from.
func (r *RequestRepository) SetGuestVisitStatus(ctx context.Context, requestID, guestID string, from, to domain.GuestVisitStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id": requestID,
		"guests": bson.M{"$elemMatch": bson.M{
			"id":           guestID,
			"visit_status": string(from),
		}},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"guests.$.visit_status": string(to)}})
	if err != nil {
		return fmt.Errorf("set guest status: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, bson.M{"_id": requestID, "guests.id": guestID}, "guest is no longer "+string(from))
	}
	return nil
}

// Delete removes the request document, guests included.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// List runs the aggregation each time the sequence is ranged over and
// decodes one document per step, so callers can stop early without loading
// the full result.
func (r *RequestRepository) List(ctx context.Context, filter ports.RequestFilter) iter.Seq2[*domain.VisitRequest, error] {
	pipeline := listPipeline(filter)
	return func(yield func(*domain.VisitRequest, error) bool) {
		cur, err := r.col.Aggregate(ctx, pipeline)
		if err != nil {
			yield(nil, fmt.Errorf("list requests: %w", err))
			return
		}
		defer cur.Close(context.WithoutCancel(ctx))

		for cur.Next(ctx) {
			var doc requestDoc
			if err := cur.Decode(&doc); err != nil {
				yield(nil, fmt.Errorf("decode request: %w", err))
				return
			}
			if !yield(doc.toDomain(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, fmt.Errorf("list requests: %w", err))
		}
	}
}

// missOrConflict tells an absent document from one whose state moved on.
func (r *RequestRepository) missOrConflict(ctx context.Context, exists bson.M, detail string) error {
	n, err := r.col.CountDocuments(ctx, exists)
	if err != nil {
		return fmt.Errorf("count requests: %w", err)
	}
	if n == 0 {
		if _, ok := exists["guests.id"]; ok {
			return domain.ErrGuestNotFound
		}
		return domain.ErrRequestNotFound
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidState, detail)
}

func appellantLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "appellant_id",
			"foreignField": "_id",
			"as":           "appellant",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$appellant", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"appellant.password": 0}}},
	}
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// listPipeline builds the aggregation behind List. Document fields are
// matched before the lookup; the appellant name can only be matched after.
func listPipeline(f ports.RequestFilter) mongo.Pipeline {
	match := bson.M{}
	if f.Status != "" {
		match["status"] = string(f.Status)
	}
	if f.AppellantID != "" {
		match["appellant_id"] = f.AppellantID
	}
	if f.GuestName != "" {
		match["guests.full_name"] = containsFold(f.GuestName)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	pipeline = append(pipeline, appellantLookup()...)
	if f.AppellantName != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"appellant.full_name": containsFold(f.AppellantName)}}})
	}
	return pipeline
}

func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "appellant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
