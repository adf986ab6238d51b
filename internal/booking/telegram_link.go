package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// LinkTTL — сколько живёт код привязки Telegram.
const LinkTTL = 10 * time.Minute

type LinkCode struct {
	Code      string
	ExpiresAt time.Time
}

func newLinkCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// StartTelegramLink — код, который пользователь отправляет боту командой /link.
func (s *Service) StartTelegramLink(ctx context.Context, sess Session) (LinkCode, error) {
	if sess.AccountID == "" {
		return LinkCode{}, &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage}
	}
	code := newLinkCode()
	if err := s.links.Put(ctx, code, sess.AccountID, LinkTTL); err != nil {
		return LinkCode{}, s.internal(ctx, "telegram.link.start", err, MsgLinkFailed)
	}
	return LinkCode{Code: code, ExpiresAt: s.now().Add(LinkTTL)}, nil
}

// LinkTelegram — вызывается ботом: код → аккаунт, чат записывается в профиль
// (и в справочник, если это учитель).
func (s *Service) LinkTelegram(ctx context.Context, code string, chatID int64) (models.Profile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Profile{}, userErr(KindValidation, MsgLinkCodeInvalid)
	}
	accountID, err := s.links.Take(ctx, code)
	if err != nil {
		return models.Profile{}, s.internal(ctx, "telegram.link.take", err, MsgLinkFailed)
	}
	if accountID == "" {
		return models.Profile{}, userErr(KindNotFound, MsgLinkCodeInvalid)
	}

	unlock := s.limiter.Lock(accountID)
	defer unlock()

	p, err := s.store.SetTelegramChat(ctx, accountID, chatID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Profile{}, userErr(KindNotFound, MsgProfileNotFound)
	}
	if err != nil {
		return models.Profile{}, s.internal(ctx, "telegram.link", err, MsgLinkFailed)
	}
	s.audit(ctx, models.ActionTelegramLinked, fmt.Sprintf("%s chat %d", p.Email, chatID))
	return p, nil
}
