package repository

import (
	"context"

	"design-practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProblemRepository struct {
	Col *mongo.Collection
}

func NewProblemRepository(db *mongo.Database) *ProblemRepository {
	return &ProblemRepository{Col: db.Collection("problems")}
}

func (r *ProblemRepository) FindAll(ctx context.Context) ([]models.Problem, error) {
	cur, err := r.Col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	problems := []models.Problem{}
	if err := cur.All(ctx, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *ProblemRepository) FindByID(ctx context.Context, id string) (*models.Problem, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var problem models.Problem
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&problem)
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (r *ProblemRepository) Create(ctx context.Context, problem *models.Problem) error {
	res, err := r.Col.InsertOne(ctx, problem)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		problem.ID = oid.Hex()
	}
	return nil
}

func (r *ProblemRepository) Update(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update})
	return err
}

func (r *ProblemRepository) Delete(ctx context.Context, id string) (bool, error) {
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
