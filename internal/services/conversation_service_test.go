package services

import (
	"context"
	"testing"
	"time"

	"github.com/mhagedorn/sprachtutor/internal/models"
	"github.com/mhagedorn/sprachtutor/internal/utils"
)

type captureRepo struct {
	appended []*models.ConversationRecord
	gotLimit int
}

func (r *captureRepo) Append(_ context.Context, rec *models.ConversationRecord) error {
	r.appended = append(r.appended, rec)
	return nil
}

func (r *captureRepo) Recent(_ context.Context, limit int) ([]models.ConversationRecord, error) {
	r.gotLimit = limit
	return nil, nil
}

func TestConversationAppendValidates(t *testing.T) {
	repo := &captureRepo{}
	svc := NewConversationService(repo)
	ctx := context.Background()

	cases := []*models.ConversationRecord{
		nil,
		{ReplyText: "a"},
		{UserText: "a"},
	}
	for i, rec := range cases {
		if err := svc.Append(ctx, rec); !utils.IsCode(err, utils.CodeInvalidArgument) {
			t.Errorf("case %d: expected INVALID_ARGUMENT, got %v", i, err)
		}
	}
	if len(repo.appended) != 0 {
		t.Fatalf("invalid records reached the repo: %d", len(repo.appended))
	}
}

func TestConversationAppendSetsTimestamp(t *testing.T) {
	repo := &captureRepo{}
	svc := NewConversationService(repo)

	rec := &models.ConversationRecord{UserText: "Hallo", ReplyText: "Guten Tag"}
	if err := svc.Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if rec.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
	if time.Since(rec.Timestamp) > time.Minute {
		t.Fatalf("timestamp implausible: %v", rec.Timestamp)
	}
}

func TestConversationRecentClampsLimit(t *testing.T) {
	repo := &captureRepo{}
	svc := NewConversationService(repo)
	ctx := context.Background()

	cases := map[int]int{0: 10, -5: 10, 3: 3, 9999: 500}
	for in, want := range cases {
		if _, err := svc.Recent(ctx, in); err != nil {
			t.Fatal(err)
		}
		if repo.gotLimit != want {
			t.Errorf("limit %d -> %d, want %d", in, repo.gotLimit, want)
		}
	}
}
