package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goodlyheritage/entrex-backend/internal/config"
	"github.com/goodlyheritage/entrex-backend/internal/database"
	"github.com/goodlyheritage/entrex-backend/internal/logger"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/repository"
	"github.com/goodlyheritage/entrex-backend/internal/service"
	"github.com/rs/zerolog"
)

// Seeds a small demo question bank across the five entrance-exam subjects so
// a fresh install can run an exam end to end.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(questionRepo, nil, zerolog.Nop())

	subjects := []string{
		"Mathematics",
		"English",
		"Quantitative Reasoning",
		"Verbal Reasoning",
		"General Paper",
	}

	fmt.Println("=== Seeding Demo Questions ===")

	successCount := 0
	total := 0
	for _, subject := range subjects {
		for i := 1; i <= 20; i++ {
			total++
			correct := fmt.Sprintf("%s answer %d", subject, i)
			req := &model.CreateQuestionRequest{
				QuestionText: fmt.Sprintf("%s sample question %d?", subject, i),
				Options: []string{
					correct,
					fmt.Sprintf("%s distractor %d-a", subject, i),
					fmt.Sprintf("%s distractor %d-b", subject, i),
					fmt.Sprintf("%s distractor %d-c", subject, i),
				},
				CorrectAnswer: correct,
				Subject:       subject,
				Marks:         1,
			}

			if _, err := questionService.Create(ctx, req); err != nil {
				fmt.Printf("Error creating %s question %d: %v\n", subject, i, err)
			} else {
				successCount++
			}
		}
		fmt.Printf("Seeded %s\n", subject)
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d questions.\n", successCount, total)
}
