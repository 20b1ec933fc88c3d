package service

import (
	"context"
	"errors"
	"time"

	"design-practice-service/internal/models"
	"design-practice-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProblemService struct {
	Repo *repository.ProblemRepository
}

func NewProblemService(repo *repository.ProblemRepository) *ProblemService {
	return &ProblemService{Repo: repo}
}

func (s *ProblemService) ListProblems(ctx context.Context) ([]models.Problem, error) {
	return s.Repo.FindAll(ctx)
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*models.Problem, error) {
	problem, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) CreateProblem(ctx context.Context, problem *models.Problem) error {
	now := time.Now().UTC()
	problem.CreatedAt = now
	problem.UpdatedAt = now
	return s.Repo.Create(ctx, problem)
}

func (s *ProblemService) UpdateProblem(ctx context.Context, id string, update map[string]any) error {
	update["updated_at"] = time.Now().UTC()
	return s.Repo.Update(ctx, id, bson.M(update))
}

func (s *ProblemService) DeleteProblem(ctx context.Context, id string) error {
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
