package repository

import (
	"context"
	"time"

	"design-practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.PracticeSession, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var session models.PracticeSession
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindLiveByUserAndProblem returns the user's active or paused session for a
// problem, or mongo.ErrNoDocuments when none exists.
func (r *SessionRepository) FindLiveByUserAndProblem(ctx context.Context, userID, problemID string) (*models.PracticeSession, error) {
	var session models.PracticeSession
	err := r.Col.FindOne(ctx, bson.M{
		"user_id":    userID,
		"problem_id": problemID,
		"status":     bson.M{"$in": []string{models.StatusActive, models.StatusPaused}},
	}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string, skip, limit int64) ([]models.PracticeSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []models.PracticeSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.PracticeSession) error {
	res, err := r.Col.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

// SaveDiagram persists a changed diagram together with its fingerprint and
// the cheap time-tracking fields in one write.
func (r *SessionRepository) SaveDiagram(ctx context.Context, id string, diagram map[string]interface{}, hash string, timeSpent int, now time.Time) error {
	return r.Update(ctx, id, bson.M{
		"diagram_data":  diagram,
		"diagram_hash":  hash,
		"time_spent":    timeSpent,
		"last_saved_at": now,
		"updated_at":    now,
	})
}

// SaveTime updates only the time-tracking fields. Used when the diagram
// fingerprint is unchanged so the large payload is not rewritten.
func (r *SessionRepository) SaveTime(ctx context.Context, id string, timeSpent int, now time.Time) error {
	return r.Update(ctx, id, bson.M{
		"time_spent":    timeSpent,
		"last_saved_at": now,
		"updated_at":    now,
	})
}

// UpdateStatus transitions the session status. timeSpent and endedAt are
// only written when non-nil.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id, status string, timeSpent *int, endedAt *time.Time, now time.Time) error {
	update := bson.M{
		"status":     status,
		"updated_at": now,
	}
	if timeSpent != nil {
		update["time_spent"] = *timeSpent
	}
	if endedAt != nil {
		update["ended_at"] = *endedAt
	}
	return r.Update(ctx, id, update)
}

// AppendMessage appends one entry to the session's ordered message log.
func (r *SessionRepository) AppendMessage(ctx context.Context, id string, msg models.ChatMessage) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$push": bson.M{"chat_messages": msg},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// AppendFeedback appends a fingerprint-tagged feedback entry and refreshes
// the session's top-level diagram hash in the same atomic update, so a cache
// entry and the hash it refers to can never diverge within this write.
func (r *SessionRepository) AppendFeedback(ctx context.Context, id string, msg models.ChatMessage) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$push": bson.M{"chat_messages": msg},
		"$set": bson.M{
			"diagram_hash": msg.DiagramHash,
			"updated_at":   time.Now().UTC(),
		},
	})
	return err
}

// DeleteAbandonedBefore physically removes abandoned sessions last touched
// before the cutoff. Returns the number of deleted documents.
func (r *SessionRepository) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.Col.DeleteMany(ctx, bson.M{
		"status":     models.StatusAbandoned,
		"updated_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
