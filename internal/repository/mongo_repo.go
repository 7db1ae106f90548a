package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	eventsCollection       = "events"
	reservationsCollection = "reservations"
	usersCollection        = "users"
)

// NewMongoStore wires the MongoDB-backed repositories and makes sure the
// indexes they query by exist.
func NewMongoStore(db *mongo.Database) *Store {
	m := &mongoRepository{
		client:       db.Client(),
		events:       db.Collection(eventsCollection),
		reservations: db.Collection(reservationsCollection),
		users:        db.Collection(usersCollection),
	}
	if err := m.EnsureIndexes(context.Background()); err != nil {
		logger.Log.Warn("ensure mongo indexes", zap.Error(err))
	}
	return &Store{
		Events:       &mongoEventRepository{m},
		Reservations: &mongoReservationRepository{m},
		Users:        &mongoUserRepository{m},
	}
}

type mongoRepository struct {
	client       *mongo.Client
	events       *mongo.Collection
	reservations *mongo.Collection
	users        *mongo.Collection
}

func (m *mongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = m.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("events_created_at"),
		},
		{
			Keys:    bson.D{{Key: "promoters", Value: 1}},
			Options: options.Index().SetName("events_promoters"),
		},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}

	_, err = m.reservations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("reservations_event_created"),
		},
	})
	if err != nil {
		return fmt.Errorf("reservations indexes: %w", err)
	}
	return nil
}

func mongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)

	var result []T
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		result = append(result, v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return result, nil
}

// --- events ---

type mongoEventRepository struct {
	*mongoRepository
}

func (r *mongoEventRepository) Create(ctx context.Context, event *models.Event) error {
	if _, err := r.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", mongoErr(err))
	}
	return nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := r.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, mongoErr(err)
	}
	return &e, nil
}

func (r *mongoEventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoEventRepository) FindByPromoter(ctx context.Context, uid string) ([]models.Event, error) {
	return r.list(ctx, bson.M{"promoters": uid})
}

func (r *mongoEventRepository) list(ctx context.Context, filter bson.M) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return decodeAll[models.Event](ctx, cur)
}

func (r *mongoEventRepository) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	set := patchDocument(patch)
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Event
	err := r.events.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&e)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &e, nil
}

// AttachPromoter runs both $addToSet updates in one transaction, which needs
// a replica set deployment.
func (r *mongoEventRepository) AttachPromoter(ctx context.Context, eventID, uid string) (bool, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return false, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		now := time.Now().UTC()

		var u models.User
		if err := r.users.FindOne(sc, bson.M{"_id": uid}).Decode(&u); err != nil {
			return false, mongoErr(err)
		}

		res, err := r.events.UpdateOne(sc,
			bson.M{"_id": eventID, "promoters": bson.M{"$ne": uid}},
			bson.M{
				"$addToSet": bson.M{"promoters": uid},
				"$set":      bson.M{"updated_at": now},
			})
		if err != nil {
			return false, err
		}
		if res.MatchedCount == 0 {
			n, err := r.events.CountDocuments(sc, bson.M{"_id": eventID})
			if err != nil {
				return false, err
			}
			if n == 0 {
				return false, ErrNotFound
			}
		}

		if _, err := r.users.UpdateOne(sc,
			bson.M{"_id": uid},
			bson.M{
				"$addToSet": bson.M{"events": eventID},
				"$set":      bson.M{"updated_at": now},
			}); err != nil {
			return false, err
		}
		return res.MatchedCount > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("attach promoter %s to %s: %w", uid, eventID, err)
	}
	return out.(bool), nil
}

func (r *mongoEventRepository) DetachPromoter(ctx context.Context, uid string) (int64, error) {
	res, err := r.events.UpdateMany(ctx,
		bson.M{"promoters": uid},
		bson.M{
			"$pull": bson.M{"promoters": uid},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, fmt.Errorf("detach promoter %s: %w", uid, err)
	}
	return res.ModifiedCount, nil
}

func patchDocument(p models.EventPatch) bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Time != nil {
		set["time"] = *p.Time
	}
	if p.Place != nil {
		set["place"] = *p.Place
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Note != nil {
		set["note"] = *p.Note
	}
	if p.ImageURL != nil {
		set["image_url"] = *p.ImageURL
	}
	if p.Fields != nil {
		set["fields"] = *p.Fields
	}
	if p.PrimaryField != nil {
		set["primary_field"] = *p.PrimaryField
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.AcceptingReservations != nil {
		set["accepting_reservations"] = *p.AcceptingReservations
	}
	return set
}

// --- reservations ---

type mongoReservationRepository struct {
	*mongoRepository
}

func (r *mongoReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	if _, err := r.reservations.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("insert reservation: %w", mongoErr(err))
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.reservations.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		return nil, mongoErr(err)
	}
	return &res, nil
}

func (r *mongoReservationRepository) FindByEventID(ctx context.Context, eventID string) ([]models.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.reservations.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reservations for %s: %w", eventID, err)
	}
	return decodeAll[models.Reservation](ctx, cur)
}

func (r *mongoReservationRepository) CountByEvent(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": bson.M{"$in": eventIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$event_id", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.reservations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	rows, err := decodeAll[struct {
		EventID string `bson:"_id"`
		Count   int64  `bson:"count"`
	}](ctx, cur)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.EventID] = row.Count
	}
	return counts, nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.reservations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete reservation %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- users ---

type mongoUserRepository struct {
	*mongoRepository
}

func (r *mongoUserRepository) Create(ctx context.Context, u *models.User) error {
	if _, err := r.users.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", mongoErr(err))
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}
	return &u, nil
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return decodeAll[models.User](ctx, cur)
}

func (r *mongoUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
	cur, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return decodeAll[models.User](ctx, cur)
}

func (r *mongoUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.set(ctx, id, bson.M{"role": role})
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, bson.M{"password_hash": hash})
}

func (r *mongoUserRepository) set(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
