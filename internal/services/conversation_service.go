package services

import (
	"context"
	"time"

	"github.com/mhagedorn/sprachtutor/internal/models"
	"github.com/mhagedorn/sprachtutor/internal/repositories/jsonl"
	"github.com/mhagedorn/sprachtutor/internal/utils"
)

type ConversationService interface {
	Append(ctx context.Context, rec *models.ConversationRecord) error
	Recent(ctx context.Context, limit int) ([]models.ConversationRecord, error)
}

type conversationService struct {
	convos jsonl.ConversationRepo
}

func NewConversationService(convos jsonl.ConversationRepo) ConversationService {
	return &conversationService{convos: convos}
}

func (s *conversationService) Append(ctx context.Context, rec *models.ConversationRecord) error {
	const op = "ConversationService.Append"

	if rec == nil || rec.UserText == "" || rec.ReplyText == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_text and reply_text are required", nil)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := s.convos.Append(ctx, rec); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to append conversation record", err)
	}
	return nil
}

func (s *conversationService) Recent(ctx context.Context, limit int) ([]models.ConversationRecord, error) {
	const op = "ConversationService.Recent"

	if limit <= 0 {
		limit = 10
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := s.convos.Recent(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read conversation history", err)
	}
	return rows, nil
}
