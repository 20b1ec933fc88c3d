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

type SubmissionRepository struct {
	Col *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{Col: db.Collection("submissions")}
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var submission models.Submission
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&submission)
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) FindByUser(ctx context.Context, userID string, skip, limit int64) ([]models.Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	submissions := []models.Submission{}
	if err := cur.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *SubmissionRepository) FindByUserAndProblem(ctx context.Context, userID, problemID string) (*models.Submission, error) {
	var submission models.Submission
	err := r.Col.FindOne(ctx, bson.M{
		"user_id":    userID,
		"problem_id": problemID,
	}, options.FindOne().SetSort(bson.D{{Key: "submitted_at", Value: -1}})).Decode(&submission)
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	res, err := r.Col.InsertOne(ctx, submission)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		submission.ID = oid.Hex()
	}
	return nil
}

// AppendChatMessage extends the submission's chat log. The score and
// feedback fields are never touched after creation.
func (r *SubmissionRepository) AppendChatMessage(ctx context.Context, id string, msg models.ChatMessage) error {
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

func (r *SubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
